package services

import (
	"context"
	"testing"
	"time"

	"app-registry-cms/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestIssueTokenCarriesClaims(t *testing.T) {
	h := newHarness(t)
	auth := NewAuthService(h.repos.Users, testSecret, time.Hour)

	signed, err := auth.IssueToken(&h.contact)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.EqualValues(t, h.contact.ID, claims["user_id"])
	assert.Equal(t, h.contact.Email, claims["email"])
	assert.Equal(t, string(models.RoleUser), claims["role"])
}

func TestImpersonate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	auth := NewAuthService(h.repos.Users, testSecret, time.Hour)

	res, err := auth.Impersonate(ctx, &h.admin, h.contact.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, h.contact.Email, res.User.Email)

	_, err = auth.Impersonate(ctx, &h.contact, h.admin.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = auth.Impersonate(ctx, &h.admin, h.banned.ID)
	assert.ErrorIs(t, err, models.ErrBanned)
	_, err = auth.Impersonate(ctx, &h.admin, 9999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	auth := NewAuthService(h.repos.Users, testSecret, time.Hour)

	user, err := auth.CreateUser(ctx, models.CreateUserRequest{Email: " New.Person@NPS.gov ", AgencyID: &h.agency.ID})
	require.NoError(t, err)
	assert.Equal(t, "new.person@nps.gov", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.ContactNotificationsEmails)

	_, err = auth.CreateUser(ctx, models.CreateUserRequest{Email: "new.person@nps.gov"})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	_, err = auth.CreateUser(ctx, models.CreateUserRequest{Email: "x@nps.gov", Role: "owner"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("role"))
}

func TestUpdateRole(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	auth := NewAuthService(h.repos.Users, testSecret, time.Hour)

	user, err := auth.UpdateRole(ctx, &h.admin, h.contact.ID, models.RoleBanned)
	require.NoError(t, err)
	assert.True(t, user.IsBanned())

	_, err = auth.UpdateRole(ctx, &h.admin, h.admin.ID, models.RoleUser)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = auth.UpdateRole(ctx, &h.member, h.outsider.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = auth.UpdateRole(ctx, &h.admin, h.member.ID, "root")
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}
