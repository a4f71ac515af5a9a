package usecase

import (
	"context"
	"errors"
	"io"
	"user_admin/internal/domain"

	"github.com/sirupsen/logrus"
)

// --- Mock implementations ---

type mockUserRepo struct {
	createUserFn    func(ctx context.Context, user *domain.User) (*domain.User, error)
	getUserByIDFn   func(ctx context.Context, id int64) (*domain.User, error)
	getUserByNameFn func(ctx context.Context, userName string) (*domain.User, error)
	updateUserFn    func(ctx context.Context, user *domain.User) (*domain.User, error)
	deleteUserFn    func(ctx context.Context, id int64) error
	listUsersFn     func(ctx context.Context) ([]domain.User, error)
	listRolesFn     func(ctx context.Context) ([]domain.Role, error)

	calls map[string]int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{calls: make(map[string]int)}
}

func (m *mockUserRepo) totalCalls() int {
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.calls["CreateUser"]++
	if m.createUserFn != nil {
		return m.createUserFn(ctx, user)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	m.calls["GetUserByID"]++
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) GetUserByName(ctx context.Context, userName string) (*domain.User, error) {
	m.calls["GetUserByName"]++
	if m.getUserByNameFn != nil {
		return m.getUserByNameFn(ctx, userName)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.calls["UpdateUser"]++
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, user)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepo) DeleteUser(ctx context.Context, id int64) error {
	m.calls["DeleteUser"]++
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.calls["ListUsers"]++
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) ListRoles(ctx context.Context) ([]domain.Role, error) {
	m.calls["ListRoles"]++
	if m.listRolesFn != nil {
		return m.listRolesFn(ctx)
	}
	return nil, nil
}

type mockTokenIssuer struct {
	issueFn func(userID string, roles []domain.RoleName) (string, error)
}

func (m *mockTokenIssuer) Issue(userID string, roles []domain.RoleName) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(userID, roles)
	}
	return "token-" + userID, nil
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var (
	userPrincipal    = domain.Principal{ID: "tal", Roles: []domain.RoleName{domain.RoleUser}}
	adminPrincipal   = domain.Principal{ID: "admin", Roles: []domain.RoleName{domain.RoleAdmin}}
	managerPrincipal = domain.Principal{ID: "manager", Roles: []domain.RoleName{domain.RoleManager}}
)

func validCandidate() *domain.User {
	return &domain.User{
		UserName: "newUser",
		Password: "password123",
		Email:    "newuser@gmail.com",
	}
}
