package constants

import "slices"

// Operator roles. Owners see the commission ledger and manage accounts; staff run the pipeline.
const (
	Owner = "owner"
	Staff = "staff"
)

var ValidRoles = []string{Staff, Owner}

func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, role)
}
