package pipeline

import "errors"

var (
	ErrProjectNotFound         = errors.New("Project not found or already deleted")
	ErrNoLeadData              = errors.New("No lead data provided")
	ErrEmptyNote               = errors.New("Note cannot be empty")
	ErrTransitionNotAllowed    = errors.New("Status change not allowed from the current status")
	ErrPricingLocked           = errors.New("Pricing is locked until a design proof exists or the project is marked no design required")
	ErrSpecsMissing            = errors.New("A locked master spec and a signed spec are both required before confirming the deposit")
	ErrMasterSpecLocked        = errors.New("Master spec is already locked")
	ErrMissingFile             = errors.New("File reference is required")
	ErrDepositStageOrder       = errors.New("Deposit invoice must be requested before it is marked sent")
	ErrUnknownDepositStage     = errors.New("Unknown deposit stage")
	ErrInvalidAmount           = errors.New("Amount must be zero or greater")
	ErrInvalidPhotoCategory    = errors.New("Photo category must be one of site, logo, reference, markup")
	ErrInvalidProductionStatus = errors.New("Production status must be one of waiting, in_production, ready_for_install, delayed")
	ErrInvalidContactKind      = errors.New("Contact kind must be one of call, text_sent, email_sent")
	ErrInvalidSort             = errors.New("Sort must be one of name_asc, newest, last_updated")
	ErrInvalidPhone            = errors.New("Phone number must have 7 to 15 digits")
	ErrInvalidEmail            = errors.New("Email address is not valid")
)
