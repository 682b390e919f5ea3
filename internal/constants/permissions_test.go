package constants

import (
	"testing"

	roles "grayco-suite/internal/pkg/constants"

	"github.com/stretchr/testify/assert"
)

func TestAllowedRole(t *testing.T) {
	assert.True(t, AllowedRole(EditPipeline, roles.Staff))
	assert.False(t, AllowedRole(ViewLedger, roles.Staff))
	assert.True(t, AllowedRole(ViewLedger, roles.Owner))
	assert.False(t, AllowedRole("launch_rockets", roles.Owner))
}

func TestPermissionsFor(t *testing.T) {
	assert.Equal(t, []string{EditPipeline, SendEmail, ViewPipeline}, PermissionsFor(roles.Staff))
	assert.Len(t, PermissionsFor(roles.Owner), len(PermissionRoles))
	assert.Empty(t, PermissionsFor("intern"))
}
