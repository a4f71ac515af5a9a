package domain

import (
	"context"
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"userName" validate:"required"`
	Password  string    `json:"-" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Roles     []Role    `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoleNames flattens the user's roles for token claims.
func (u *User) RoleNames() []RoleName {
	names := make([]RoleName, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// UserForm is the pre-filled edit form: the user plus every role it may be given.
type UserForm struct {
	User  *User  `json:"userForm"`
	Roles []Role `json:"roles"`
}

type AuthResponse struct {
	Authenticated bool
	Token         string
	UserID        int64
	ErrorMessage  string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByName(ctx context.Context, userName string) (*User, error)
	UpdateUser(ctx context.Context, user *User) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]User, error)
	ListRoles(ctx context.Context) ([]Role, error)
}

type UserUseCase interface {
	AddUser(ctx context.Context, principal Principal, candidate *User) (*OperationResult, error)
	EditUser(ctx context.Context, principal Principal, id int64) (*OperationResult, error)
	UpdateUser(ctx context.Context, principal Principal, id int64, candidate *User) (*OperationResult, error)
	ListUsers(ctx context.Context, principal Principal) (*OperationResult, error)
	DeleteUser(ctx context.Context, principal Principal, id int64) (*OperationResult, error)
}

type AuthUseCase interface {
	Login(ctx context.Context, userName, password string) (*AuthResponse, error)
}
