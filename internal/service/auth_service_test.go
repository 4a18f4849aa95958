package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4,
	}, users)
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, token, exp, err := svc.Register(ctx, "Casey", "Casey@Example.com ", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, exp.IsZero())
	require.Equal(t, "casey@example.com", user.Email)
	require.Equal(t, domain.RoleCustomer, user.Role)
	require.NotEqual(t, "hunter22", user.PasswordHash)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, domain.RoleCustomer, claims.Role)

	same, token, _, err := svc.Login(ctx, "casey@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, same.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "", "a@example.com", "pw")
	requireStatus(t, err, 400)

	_, _, _, err = svc.Register(ctx, "Casey", "casey@example.com", "pw")
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "Other", "casey@example.com", "pw2")
	requireStatus(t, err, 409)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Login(ctx, "nobody@example.com", "pw")
	requireStatus(t, err, 401)

	_, _, _, err = svc.Register(ctx, "Casey", "casey@example.com", "pw")
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "casey@example.com", "wrong")
	requireStatus(t, err, 401)
}

func TestUserService(t *testing.T) {
	users := newFakeUserRepo(
		domain.User{ID: "u1", Name: "Casey", Email: "casey@example.com", PasswordHash: "x", Role: domain.RoleCustomer},
	)
	svc := NewUserService(users)
	ctx := context.Background()

	profiles, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	require.Equal(t, "casey@example.com", profiles[0].Email)

	profile, err := svc.UpdateRole(ctx, "u1", domain.RoleAgent)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAgent, profile.Role)

	_, err = svc.UpdateRole(ctx, "u1", "superuser")
	requireStatus(t, err, 400)

	_, err = svc.UpdateRole(ctx, "missing", domain.RoleAdmin)
	requireStatus(t, err, 404)
}
