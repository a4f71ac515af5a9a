package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"user_admin/internal/domain"
	"user_admin/pkg/password"

	"github.com/sirupsen/logrus"
)

// DefaultRoles is the role catalog seeded into every store.
var DefaultRoles = []domain.Role{
	{ID: 1, Name: domain.RoleUser},
	{ID: 2, Name: domain.RoleAdmin},
	{ID: 3, Name: domain.RoleManager},
}

type memoryUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]domain.User
	roles  []domain.Role
	nextID int64
	now    func() time.Time
	log    *logrus.Logger
}

// NewMemoryUserRepository returns a process-local store, used when no database is configured.
func NewMemoryUserRepository(logger *logrus.Logger) domain.UserRepository {
	roles := make([]domain.Role, len(DefaultRoles))
	copy(roles, DefaultRoles)
	return &memoryUserRepository{
		users:  make(map[int64]domain.User),
		roles:  roles,
		nextID: 1,
		now:    time.Now,
		log:    logger,
	}
}

func (r *memoryUserRepository) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	hash, err := password.Hash(user.Password)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts(0, user) {
		r.log.Warnf("Repository: Attempted to create duplicate user: %s", user.UserName)
		return nil, fmt.Errorf("%w: user '%s' or email '%s'", domain.ErrUserAlreadyExists, user.UserName, user.Email)
	}
	roles, err := r.resolveRoles(user.Roles)
	if err != nil {
		return nil, err
	}

	now := r.now()
	stored := domain.User{
		ID:        r.nextID,
		UserName:  user.UserName,
		Password:  hash,
		Email:     user.Email,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.users[stored.ID] = stored
	r.nextID++

	r.log.Infof("Repository: User created successfully with ID: %d, Name: %s", stored.ID, stored.UserName)
	return cloneUser(stored), nil
}

func (r *memoryUserRepository) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		r.log.Warnf("Repository: User with ID %d not found", id)
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, id)
	}
	return cloneUser(user), nil
}

func (r *memoryUserRepository) GetUserByName(_ context.Context, userName string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.UserName == userName {
			return cloneUser(user), nil
		}
	}
	r.log.Warnf("Repository: User with name %s not found", userName)
	return nil, fmt.Errorf("%w: name %s", domain.ErrUserNotFound, userName)
}

func (r *memoryUserRepository) UpdateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	hash, err := password.Hash(user.Password)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		r.log.Warnf("Repository: User with ID %d not found for update", user.ID)
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, user.ID)
	}
	if r.conflicts(user.ID, user) {
		return nil, fmt.Errorf("%w: user '%s' or email '%s'", domain.ErrUserAlreadyExists, user.UserName, user.Email)
	}
	roles, err := r.resolveRoles(user.Roles)
	if err != nil {
		return nil, err
	}

	existing.UserName = user.UserName
	existing.Password = hash
	existing.Email = user.Email
	existing.Roles = roles
	existing.UpdatedAt = r.now()
	r.users[existing.ID] = existing

	r.log.Infof("Repository: User updated successfully with ID: %d", existing.ID)
	return cloneUser(existing), nil
}

func (r *memoryUserRepository) DeleteUser(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		r.log.Warnf("Repository: Attempted to delete non-existent user ID %d", id)
		return fmt.Errorf("%w: id %d", domain.ErrUserNotFound, id)
	}
	delete(r.users, id)
	r.log.Infof("Repository: User deleted successfully with ID: %d", id)
	return nil
}

func (r *memoryUserRepository) ListUsers(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *cloneUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *memoryUserRepository) ListRoles(_ context.Context) ([]domain.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]domain.Role, len(r.roles))
	copy(roles, r.roles)
	return roles, nil
}

// conflicts reports whether another user than self already uses the name or email. Caller holds mu.
func (r *memoryUserRepository) conflicts(self int64, user *domain.User) bool {
	for id, other := range r.users {
		if id == self {
			continue
		}
		if other.UserName == user.UserName || strings.EqualFold(other.Email, user.Email) {
			return true
		}
	}
	return false
}

// resolveRoles maps role names onto the catalog. Caller holds mu.
func (r *memoryUserRepository) resolveRoles(wanted []domain.Role) ([]domain.Role, error) {
	resolved := []domain.Role{}
	seen := make(map[domain.RoleName]bool, len(wanted))
	for _, w := range wanted {
		if seen[w.Name] {
			continue
		}
		found := false
		for _, role := range r.roles {
			if role.Name == w.Name {
				resolved = append(resolved, role)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", domain.ErrRoleNotFound, w.Name)
		}
		seen[w.Name] = true
	}
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].ID < resolved[j].ID })
	return resolved, nil
}

func cloneUser(u domain.User) *domain.User {
	clone := u
	clone.Roles = make([]domain.Role, len(u.Roles))
	copy(clone.Roles, u.Roles)
	return &clone
}
