package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomlank/QuikTik/internal/domain"
	apperrors "github.com/thomlank/QuikTik/pkg/util"
)

func TestListUsersRequiresAdminOrLead(t *testing.T) {
	env := newTestEnv()
	admin := env.seedUser(t, "admin", domain.RoleAdmin)
	lead := env.seedUser(t, "lead", domain.RoleUser)
	plain := env.seedUser(t, "plain", domain.RoleUser)
	team := env.seedTeam(t, "Support", nil)
	env.seedMembership(t, lead.ID, team.ID, domain.TeamRoleLead)

	users, err := env.users.ListUsers(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = env.users.ListUsers(context.Background(), lead)
	require.NoError(t, err)

	_, err = env.users.ListUsers(context.Background(), plain)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestGetUserAccess(t *testing.T) {
	env := newTestEnv()
	alice := env.seedUser(t, "alice", domain.RoleUser)
	bob := env.seedUser(t, "bob", domain.RoleUser)

	// Self access always works.
	got, err := env.users.GetUser(context.Background(), alice, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	// Another plain user's detail is forbidden, not hidden.
	_, err = env.users.GetUser(context.Background(), alice, bob.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestCreateUserAdminOnly(t *testing.T) {
	env := newTestEnv()
	admin := env.seedUser(t, "admin", domain.RoleAdmin)
	plain := env.seedUser(t, "plain", domain.RoleUser)

	created, err := env.users.CreateUser(context.Background(), admin, "New", "Hire", "new@example.com", "s3cret", "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, created.Role)
	assert.True(t, created.Active)
	assert.NotEqual(t, "s3cret", created.PasswordHash)

	_, err = env.users.CreateUser(context.Background(), plain, "A", "B", "x@example.com", "pw", "")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = env.users.CreateUser(context.Background(), admin, "A", "B", "new@example.com", "pw", "")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestUpdateUserSelfNamesOnly(t *testing.T) {
	env := newTestEnv()
	alice := env.seedUser(t, "alice", domain.RoleUser)
	bob := env.seedUser(t, "bob", domain.RoleUser)

	first := "Alicia"
	got, err := env.users.UpdateUser(context.Background(), alice, alice.ID, UserUpdateInput{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.FirstName)

	// Editing someone else is denied for non-admins.
	_, err = env.users.UpdateUser(context.Background(), alice, bob.ID, UserUpdateInput{FirstName: &first})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	// Role escalation on self is denied even via the update path.
	adminRole := domain.RoleAdmin
	_, err = env.users.UpdateUser(context.Background(), alice, alice.ID, UserUpdateInput{Role: &adminRole})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestUpdateUserAdminPowersAndSelfProtection(t *testing.T) {
	env := newTestEnv()
	admin := env.seedUser(t, "admin", domain.RoleAdmin)
	target := env.seedUser(t, "target", domain.RoleUser)

	adminRole := domain.RoleAdmin
	got, err := env.users.UpdateUser(context.Background(), admin, target.ID, UserUpdateInput{Role: &adminRole})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	inactive := false
	got, err = env.users.UpdateUser(context.Background(), admin, target.ID, UserUpdateInput{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, got.Active)

	active := true
	got, err = env.users.UpdateUser(context.Background(), admin, target.ID, UserUpdateInput{Active: &active})
	require.NoError(t, err)
	assert.True(t, got.Active)

	// Admins cannot demote or deactivate themselves.
	userRole := domain.RoleUser
	_, err = env.users.UpdateUser(context.Background(), admin, admin.ID, UserUpdateInput{Role: &userRole})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = env.users.UpdateUser(context.Background(), admin, admin.ID, UserUpdateInput{Active: &inactive})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestDeactivateUser(t *testing.T) {
	env := newTestEnv()
	admin := env.seedUser(t, "admin", domain.RoleAdmin)
	target := env.seedUser(t, "target", domain.RoleUser)
	plain := env.seedUser(t, "plain", domain.RoleUser)

	require.NoError(t, env.users.DeactivateUser(context.Background(), admin, target.ID))
	got, err := env.repos.Users.GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	// Soft delete: the row is still there.
	users, err := env.repos.Users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 3)

	err = env.users.DeactivateUser(context.Background(), admin, admin.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	err = env.users.DeactivateUser(context.Background(), plain, target.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}
