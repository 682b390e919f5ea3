package auth

import (
	"errors"

	authsvc "grayco-suite/internal/application/auth"
	"grayco-suite/internal/constants"
	"grayco-suite/internal/middleware"
	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const operatorSessionsPrefix = "operator_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Operators authsvc.OperatorFinder
	Rdb       *redis.Client
	Config    middleware.SessionConfig
}

// LoginRequest body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /api/v1/auth/login: authenticate, create session, track it per operator, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.Operators == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}
	if req.Email == "" || req.Password == "" {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}

	op, err := h.Operators.FindByEmailAndPassword(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, authsvc.ErrInvalidEmail), errors.Is(err, authsvc.ErrIncorrectPassword):
			log.Info().Str("email", req.Email).Msg("auth: login rejected")
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			log.Error().Err(err).Msg("auth: login failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	user := middleware.SessionUser{
		OperatorID: op.ID.String(),
		Fullname:   op.Fullname,
		Email:      op.Email,
		Role:       op.Role,
	}
	middleware.SetSessionUser(c, user)

	if err := h.Rdb.SAdd(c.UserContext(), operatorSessionsPrefix+user.OperatorID, sessionID).Err(); err != nil {
		log.Error().Err(err).Str("operator_id", user.OperatorID).Msg("auth: session index write failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = middleware.SignSessionID(h.Config.Secret, sessionID)
	c.Cookie(&cookie)

	log.Info().Str("operator_id", user.OperatorID).Str("role", user.Role).Msg("auth: login")
	return response.Success(c, "Login successful", fiber.Map{"user": user, "permissions": constants.PermissionsFor(user.Role)}, nil)
}

// Me GET /api/v1/auth/me returns the current session operator.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		if middleware.GetSessionID(c) == "" {
			log.Debug().Str("path", "/auth/me").Msg("auth/me: no session cookie")
		}
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user, "permissions": constants.PermissionsFor(user.Role)}, nil)
}

// Logout DELETE /api/v1/auth/logout drops the session from Redis and clears the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.UserContext()

	if sessionID != "" {
		if u, err := authsvc.VerifyUser(middleware.GetUser(c)); err == nil {
			_ = h.Rdb.SRem(ctx, operatorSessionsPrefix+u.OperatorID, sessionID).Err()
		}
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}
