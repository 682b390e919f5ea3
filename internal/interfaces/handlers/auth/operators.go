package auth

import (
	"errors"

	authsvc "grayco-suite/internal/application/auth"
	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OperatorHandlers let the owner add shop accounts.
type OperatorHandlers struct {
	Service *authsvc.Service
}

// Add POST /api/v1/operators {fullname, email, password, role}
func (h *OperatorHandlers) Add(c *fiber.Ctx) error {
	var b struct {
		Fullname string `json:"fullname"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&b); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if b.Password == "" {
		return response.Error(c, authsvc.ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}
	op, err := h.Service.AddOperator(c.UserContext(), authsvc.OperatorInput{
		Fullname: b.Fullname, Email: b.Email, Password: b.Password, Role: b.Role,
	}, false)
	switch {
	case errors.Is(err, authsvc.ErrOperatorExists):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, authsvc.ErrEmailPasswordRequired), errors.Is(err, authsvc.ErrInvalidRole), errors.Is(err, authsvc.ErrWeakPassword),
		errors.Is(err, authsvc.ErrInvalidFullname):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case err != nil:
		return err
	}
	return response.SuccessCreated(c, "Operator added", fiber.Map{
		"operator_id": op.ID,
		"fullname":    op.Fullname,
		"email":       op.Email,
		"role":        op.Role,
	}, nil)
}
