package services

import (
	"testing"

	"app-registry-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanEdit(t *testing.T) {
	contacts := []uint{4, 9}
	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{"system", nil, true},
		{"admin", &models.User{ID: 1, Role: models.RoleAdmin}, true},
		{"super user", &models.User{ID: 2, Role: models.RoleSuperUser}, true},
		{"contact", &models.User{ID: 9, Role: models.RoleUser}, true},
		{"other user", &models.User{ID: 3, Role: models.RoleUser}, false},
		{"banned contact", &models.User{ID: 4, Role: models.RoleBanned}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEdit(tt.user, contacts))
		})
	}
}

func TestAuthorizeErrors(t *testing.T) {
	assert.ErrorIs(t, authorizeEdit(&models.User{ID: 4, Role: models.RoleBanned}, []uint{4}), models.ErrBanned)
	assert.ErrorIs(t, authorizeEdit(&models.User{ID: 3}, []uint{4}), models.ErrForbidden)
	assert.NoError(t, authorizeEdit(nil, nil))

	assert.NoError(t, requireAdmin(nil))
	assert.NoError(t, requireAdmin(&models.User{Role: models.RoleAdmin}))
	assert.ErrorIs(t, requireAdmin(&models.User{Role: models.RoleSuperUser}), models.ErrForbidden)
	assert.ErrorIs(t, requireAdmin(&models.User{Role: models.RoleBanned}), models.ErrBanned)
}

func TestPublishOptions(t *testing.T) {
	assert.Nil(t, PublishOptions{}.ActorID())

	user := &models.User{ID: 12}
	opts := AsUser(user)
	assert.True(t, opts.EmitActivity)
	require.NotNil(t, opts.ActorID())
	assert.Equal(t, uint(12), *opts.ActorID())
}

func TestPlanVersions(t *testing.T) {
	existing := []models.MobileAppVersion{
		{ID: 1, Platform: "iOS", VersionNumber: "1.0"},
		{ID: 2, Platform: "Android", VersionNumber: "1.0"},
		{ID: 3, Platform: "Web", VersionNumber: "1.0"},
	}
	one, two := uint(1), uint(2)

	plan, err := planVersions(existing, []models.MobileAppVersionInput{
		{ID: &two, Platform: "Android", VersionNumber: "2.0"},
		{ID: &one, Destroy: true},
		{Destroy: true, Platform: "ignored"},
		{},
		{Platform: "Windows", VersionNumber: "0.1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []uint{1}, plan.removed)
	require.Len(t, plan.kept, 2)
	assert.Equal(t, uint(2), plan.kept[0].ID)
	assert.Equal(t, "2.0", plan.kept[0].VersionNumber)
	assert.Equal(t, uint(3), plan.kept[1].ID)
	require.Len(t, plan.created, 1)
	assert.Equal(t, "Windows", plan.created[0].Platform)
	assert.Len(t, plan.all(), 3)

	// existing entries are not touched by planning
	assert.Equal(t, "1.0", existing[1].VersionNumber)
}

func TestPlanVersionsUnknownID(t *testing.T) {
	missing := uint(42)
	_, err := planVersions(nil, []models.MobileAppVersionInput{{ID: &missing, Platform: "iOS"}})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
