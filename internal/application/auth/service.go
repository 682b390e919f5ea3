package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/constants"
	"grayco-suite/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	OperatorID string `json:"operator_id"`
	Fullname   string `json:"fullname"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

// OperatorFinder abstracts operator lookup by email+password (GORM in production, doubles in tests).
type OperatorFinder interface {
	FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.Operator, error)
}

// Service manages shop operators for one tenant.
type Service struct {
	DB       *gorm.DB
	TenantID uuid.UUID
}

func (s *Service) FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.Operator, error) {
	return s.Login(ctx, LoginInput{Email: email, Password: password})
}

// Login finds the operator by email and verifies the password.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.Operator, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var o domain.Operator
	if err := s.DB.WithContext(ctx).Where("tenant_id = ? AND email = ?", s.TenantID, email).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if o.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &o, nil
}

// OperatorInput creates or replaces an operator.
type OperatorInput struct {
	Fullname string
	Email    string
	Password string
	// PasswordHash is used as is when Password is empty (seeded from OPERATOR_PASSWORD_HASH).
	PasswordHash string
	Role         string
}

// AddOperator stores a new operator. An existing email is an error unless replace is set.
func (s *Service) AddOperator(ctx context.Context, in OperatorInput, replace bool) (*domain.Operator, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, ErrEmailPasswordRequired
	}
	role := in.Role
	if role == "" {
		role = constants.Staff
	}
	if !constants.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	hash := in.PasswordHash
	if in.Password != "" {
		if !validation.IsValidPassword(in.Password) {
			return nil, ErrWeakPassword
		}
		b, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(b)
	}
	if hash == "" {
		return nil, ErrEmailPasswordRequired
	}
	fullname := strings.TrimSpace(in.Fullname)
	if fullname == "" {
		fullname = email
	} else if !validation.IsValidFullname(fullname) {
		return nil, ErrInvalidFullname
	}

	var out domain.Operator
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("tenant_id = ? AND email = ?", s.TenantID, email).First(&out).Error
		switch {
		case err == nil:
			if !replace {
				return ErrOperatorExists
			}
			if out.Role == constants.Owner && role != constants.Owner {
				var owners int64
				if err := tx.Model(&domain.Operator{}).Where("tenant_id = ? AND role = ?", s.TenantID, constants.Owner).Count(&owners).Error; err != nil {
					return err
				}
				if owners <= 1 {
					return ErrLastOwner
				}
			}
			out.Fullname, out.PasswordHash, out.Role, out.UpdatedAt = fullname, hash, role, time.Now()
			return tx.Save(&out).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now()
			out = domain.Operator{TenantID: s.TenantID, Fullname: fullname, Email: email, PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now}
			return tx.Create(&out).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyUser validates session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	id, _ := m["operator_id"].(string)
	if id == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		OperatorID: id,
		Fullname:   str(m["fullname"]),
		Email:      str(m["email"]),
		Role:       str(m["role"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
