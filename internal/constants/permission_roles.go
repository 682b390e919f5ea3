package constants

import (
	"slices"

	roles "grayco-suite/internal/pkg/constants"
)

// PermissionRoles maps each permission to the operator roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewPipeline:    {roles.Staff, roles.Owner},
	EditPipeline:    {roles.Staff, roles.Owner},
	SendEmail:       {roles.Staff, roles.Owner},
	ViewLedger:      {roles.Owner},
	EditLedger:      {roles.Owner},
	DeleteProject:   {roles.Owner},
	ManageOperators: {roles.Owner},
}

func AllowedRole(permission, role string) bool {
	return slices.Contains(PermissionRoles[permission], role)
}

// PermissionsFor lists what role may do, sorted, so the UI can hide what the API would refuse.
func PermissionsFor(role string) []string {
	out := []string{}
	for p, allowed := range PermissionRoles {
		if slices.Contains(allowed, role) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}
