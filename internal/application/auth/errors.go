package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid Email")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrNotAuthenticated      = errors.New("Not authenticated")
	ErrInvalidRole           = errors.New("Role must be one of staff, owner")
	ErrOperatorExists        = errors.New("An operator with this email already exists")
	ErrWeakPassword          = errors.New("Password must be at least 8 characters")
	ErrLastOwner             = errors.New("The shop must keep at least one owner")
	ErrInvalidFullname       = errors.New("Name may only contain letters, spaces, hyphens and apostrophes")
)
