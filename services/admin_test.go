package services

import (
	"testing"

	"deposit-telegram/models"

	"github.com/stretchr/testify/assert"
)

func TestActorCapabilities(t *testing.T) {
	admin := &Actor{UserID: 1, Role: models.RoleAdmin}
	assert.True(t, admin.CanResolve())
	assert.True(t, admin.CanManageCodes())
	assert.False(t, admin.CanManageAdmins())
	assert.False(t, admin.IsSuperadmin())

	super := &Actor{UserID: 2, Role: models.RoleSuperadmin}
	assert.True(t, super.CanResolve())
	assert.True(t, super.CanManageCodes())
	assert.True(t, super.CanManageAdmins())
	assert.True(t, super.IsSuperadmin())

	nobody := &Actor{UserID: 3, Role: "viewer"}
	assert.False(t, nobody.CanResolve())
	assert.False(t, nobody.CanManageCodes())
	assert.False(t, nobody.CanManageAdmins())
}
