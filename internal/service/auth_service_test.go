package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telesales/callops-service/internal/auth"
	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/service"
)

func newAuthService() (*service.AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	svc := service.NewAuthService(service.AuthDependencies{
		UserRepo:   users,
		Tokens:     auth.NewTokenManager("test-secret", 60),
		BcryptCost: 4,
	})
	return svc, users
}

func TestUsernameSlug(t *testing.T) {
	assert.Equal(t, "anasouza", service.UsernameSlug("Ana Souza"))
	assert.Equal(t, "anasouza", service.UsernameSlug("  ana souza  "))
}

func TestCreateUserAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, service.CreateUserInput{
		Name:     "Ana Souza",
		Password: "segredo1",
		Role:     domain.RoleOperator,
	})
	require.NoError(t, err)
	assert.Equal(t, "anasouza", created.Username)
	assert.True(t, created.Active)
	assert.NotEqual(t, "segredo1", created.PasswordHash)

	user, token, _, err := svc.Login(ctx, "Ana Souza", "segredo1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.NotEmpty(t, token)

	_, _, _, err = svc.Login(ctx, "anasouza", "errada")
	require.Error(t, err)
	_, _, _, err = svc.Login(ctx, "desconhecido", "segredo1")
	require.Error(t, err)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, service.CreateUserInput{Name: "", Password: "segredo1"})
	require.Error(t, err)
	_, err = svc.CreateUser(ctx, service.CreateUserInput{Name: "Ana", Password: "curta"})
	require.Error(t, err)
	_, err = svc.CreateUser(ctx, service.CreateUserInput{Name: "Ana", Password: "segredo1", Role: "GERENTE"})
	require.Error(t, err)

	_, err = svc.CreateUser(ctx, service.CreateUserInput{Name: "Ana Souza", Password: "segredo1"})
	require.NoError(t, err)
	// Same slug: conflict.
	_, err = svc.CreateUser(ctx, service.CreateUserInput{Name: "ana souza", Password: "segredo1"})
	require.Error(t, err)
}

func TestDeactivatedUserCannotLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, service.CreateUserInput{Name: "Ana", Password: "segredo1"})
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateUser(ctx, created.ID, service.UpdateUserInput{Active: &inactive})
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "ana", "segredo1")
	require.Error(t, err)
}

func TestUpdateUserKeepsUsername(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, service.CreateUserInput{Name: "Ana Souza", Password: "segredo1"})
	require.NoError(t, err)

	newName := "Ana Lima"
	role := domain.RoleSupervisor
	updated, err := svc.UpdateUser(ctx, created.ID, service.UpdateUserInput{Name: &newName, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", updated.Name)
	assert.Equal(t, domain.RoleSupervisor, updated.Role)
	// Login identity is stable across renames.
	assert.Equal(t, "anasouza", updated.Username)
}
