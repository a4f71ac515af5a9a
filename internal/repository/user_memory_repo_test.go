package repository

import (
	"context"
	"io"
	"sync"
	"testing"
	"user_admin/internal/domain"
	"user_admin/pkg/password"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestMemoryRepo_CreateAndGet(t *testing.T) {
	repo := NewMemoryUserRepository(newTestLogger())
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, &domain.User{
		UserName: "alice",
		Password: "secret",
		Email:    "alice@example.com",
		Roles:    []domain.Role{{Name: domain.RoleAdmin}, {Name: domain.RoleUser}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.NotEqual(t, "secret", created.Password)
	assert.NoError(t, password.Compare(created.Password, "secret"))
	assert.Equal(t, []domain.Role{{ID: 1, Name: domain.RoleUser}, {ID: 2, Name: domain.RoleAdmin}}, created.Roles)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := repo.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)

	byName, err := repo.GetUserByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
}

func TestMemoryRepo_IDsAreNotReused(t *testing.T) {
	repo := NewMemoryUserRepository(newTestLogger())
	ctx := context.Background()

	first, err := repo.CreateUser(ctx, &domain.User{UserName: "a", Password: "p", Email: "a@example.com"})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteUser(ctx, first.ID))

	second, err := repo.CreateUser(ctx, &domain.User{UserName: "a", Password: "p", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestMemoryRepo_Duplicates(t *testing.T) {
	repo := NewMemoryUserRepository(newTestLogger())
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, &domain.User{UserName: "a", Password: "p", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, &domain.User{UserName: "a", Password: "p", Email: "other@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	_, err = repo.CreateUser(ctx, &domain.User{UserName: "b", Password: "p", Email: "A@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestMemoryRepo_UnknownRole(t *testing.T) {
	repo := NewMemoryUserRepository(newTestLogger())

	_, err := repo.CreateUser(context.Background(), &domain.User{
		UserName: "a", Password: "p", Email: "a@example.com",
		Roles: []domain.Role{{Name: "ROOT"}},
	})
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)

	users, err := repo.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestMemoryRepo_Update(t *testing.T) {
	repo := NewMemoryUserRepository(newTestLogger())
	ctx := context.Background()

	a, err := repo.CreateUser(ctx, &domain.User{UserName: "a", Password: "p", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, &domain.User{UserName: "b", Password: "p", Email: "b@example.com"})
	require.NoError(t, err)

	updated, err := repo.UpdateUser(ctx, &domain.User{ID: a.ID, UserName: "a2", Password: "new", Email: "a2@example.com", Roles: []domain.Role{{Name: domain.RoleManager}}})
	require.NoError(t, err)
	assert.Equal(t, "a2", updated.UserName)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)
	assert.Equal(t, []domain.Role{{ID: 3, Name: domain.RoleManager}}, updated.Roles)
	assert.NoError(t, password.Compare(updated.Password, "new"))

	_, err = repo.UpdateUser(ctx, &domain.User{ID: a.ID, UserName: "b", Password: "p", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	_, err = repo.UpdateUser(ctx, &domain.User{ID: 99, UserName: "z", Password: "p", Email: "z@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMemoryRepo_DeleteAndList(t *testing.T) {
	repo := NewMemoryUserRepository(newTestLogger())
	ctx := context.Background()

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	for _, name := range []string{"c", "a", "b"} {
		_, err := repo.CreateUser(ctx, &domain.User{UserName: name, Password: "p", Email: name + "@example.com"})
		require.NoError(t, err)
	}

	require.NoError(t, repo.DeleteUser(ctx, 2))
	assert.ErrorIs(t, repo.DeleteUser(ctx, 2), domain.ErrUserNotFound)

	users, err = repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, int64(3), users[1].ID)

	_, err = repo.GetUserByID(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMemoryRepo_ReturnsCopies(t *testing.T) {
	repo := NewMemoryUserRepository(newTestLogger())
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, &domain.User{UserName: "a", Password: "p", Email: "a@example.com", Roles: []domain.Role{{Name: domain.RoleUser}}})
	require.NoError(t, err)
	created.UserName = "mutated"
	created.Roles[0].Name = domain.RoleAdmin

	fetched, err := repo.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", fetched.UserName)
	assert.Equal(t, domain.RoleUser, fetched.Roles[0].Name)

	roles, err := repo.ListRoles(ctx)
	require.NoError(t, err)
	roles[0].Name = "CHANGED"
	again, err := repo.ListRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultRoles, again)
}

func TestMemoryRepo_ConcurrentCreates(t *testing.T) {
	repo := NewMemoryUserRepository(newTestLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a' + i))
			_, err := repo.CreateUser(ctx, &domain.User{UserName: name, Password: "p", Email: name + "@example.com"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 8)
	seen := make(map[int64]bool)
	for _, u := range users {
		assert.False(t, seen[u.ID], "duplicate id %d", u.ID)
		seen[u.ID] = true
	}
}
