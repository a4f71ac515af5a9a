package usecase

import (
	"context"
	"fmt"
	"user_admin/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	MsgUserAdded     = "User added successfully"
	MsgUserRetrieved = "User retrieved successfully"
	MsgUserUpdated   = "User updated successfully"
	MsgUsersListed   = "Users retrieved successfully"
	MsgUserDeleted   = "User deleted successfully"
)

// userUseCase implements domain.UserUseCase. It holds no per-request state.
type userUseCase struct {
	userRepo  domain.UserRepository
	policy    domain.Policy
	validator *userValidator
	log       *logrus.Logger
}

// NewUserUseCase builds the access-controlled user service. A nil policy means domain.DefaultPolicy.
func NewUserUseCase(repo domain.UserRepository, policy domain.Policy, logger *logrus.Logger) domain.UserUseCase {
	if policy == nil {
		policy = domain.DefaultPolicy()
	}
	return &userUseCase{
		userRepo:  repo,
		policy:    policy,
		validator: newUserValidator(),
		log:       logger,
	}
}

func (uc *userUseCase) authorize(principal domain.Principal, op domain.Operation) *domain.OperationResult {
	reason, allowed := uc.policy.Authorize(principal, op)
	if allowed {
		return nil
	}
	uc.log.WithFields(logrus.Fields{
		"principal": principal.ID,
		"roles":     principal.Roles,
		"operation": op,
	}).Warnf("Use Case: Access denied - %s", reason)
	return domain.AuthorizationFailure(reason)
}

// AddUser validates candidate and persists it. Any authenticated principal may add users,
// but only elevated principals may hand out elevated roles.
func (uc *userUseCase) AddUser(ctx context.Context, principal domain.Principal, candidate *domain.User) (*domain.OperationResult, error) {
	if denied := uc.authorize(principal, domain.OperationAdd); denied != nil {
		return denied, nil
	}

	user := normalizeCandidate(candidate)
	if fieldErrors := uc.validator.check(user); len(fieldErrors) > 0 {
		uc.log.Warnf("Use Case: Add user rejected - %d invalid field(s)", len(fieldErrors))
		return domain.ValidationFailure(fieldErrors), nil
	}
	if hasElevatedRole(user.Roles) && !principal.HasElevatedRole() {
		return uc.denyRoleGrant(principal), nil
	}
	if len(user.Roles) == 0 {
		user.Roles = []domain.Role{{Name: domain.RoleUser}}
	}

	uc.log.Infof("Use Case: Attempting to add user '%s'", user.UserName)
	created, err := uc.userRepo.CreateUser(ctx, user)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create user '%s': %v", user.UserName, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User added successfully. ID: %d", created.ID)
	return domain.Success(MsgUserAdded, created), nil
}

// EditUser returns the stored user and the role catalog as a pre-filled form.
func (uc *userUseCase) EditUser(ctx context.Context, principal domain.Principal, id int64) (*domain.OperationResult, error) {
	if denied := uc.authorize(principal, domain.OperationEdit); denied != nil {
		return denied, nil
	}
	if id <= 0 {
		uc.log.Warnf("Use Case: Edit user failed - invalid user ID: %d", id)
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidUserID, id)
	}

	user, err := uc.userRepo.GetUserByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get user ID %d: %v", id, err)
		return nil, err
	}
	roles, err := uc.userRepo.ListRoles(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list roles: %v", err)
		return nil, err
	}

	uc.log.Infof("Use Case: Edit form prepared for user ID: %d", id)
	return domain.Success(MsgUserRetrieved, &domain.UserForm{User: user, Roles: roles}), nil
}

// UpdateUser saves a submitted edit form over an existing user.
func (uc *userUseCase) UpdateUser(ctx context.Context, principal domain.Principal, id int64, candidate *domain.User) (*domain.OperationResult, error) {
	if denied := uc.authorize(principal, domain.OperationUpdate); denied != nil {
		return denied, nil
	}
	if id <= 0 {
		uc.log.Warnf("Use Case: Update user failed - invalid user ID: %d", id)
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidUserID, id)
	}

	user := normalizeCandidate(candidate)
	if fieldErrors := uc.validator.check(user); len(fieldErrors) > 0 {
		uc.log.Warnf("Use Case: Update user ID %d rejected - %d invalid field(s)", id, len(fieldErrors))
		return domain.ValidationFailure(fieldErrors), nil
	}

	existing, err := uc.userRepo.GetUserByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get user ID %d for update: %v", id, err)
		return nil, err
	}
	user.ID = existing.ID
	user.CreatedAt = existing.CreatedAt
	if len(user.Roles) == 0 {
		user.Roles = existing.Roles
	}

	updated, err := uc.userRepo.UpdateUser(ctx, user)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update user ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User updated successfully. ID: %d", updated.ID)
	return domain.Success(MsgUserUpdated, updated), nil
}

// ListUsers returns every stored user; the payload is never nil.
func (uc *userUseCase) ListUsers(ctx context.Context, principal domain.Principal) (*domain.OperationResult, error) {
	if denied := uc.authorize(principal, domain.OperationList); denied != nil {
		return denied, nil
	}

	users, err := uc.userRepo.ListUsers(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list users: %v", err)
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}

	uc.log.Infof("Use Case: Retrieved %d users", len(users))
	return domain.Success(MsgUsersListed, users), nil
}

// DeleteUser removes an existing user. Deleting an absent ID yields domain.ErrUserNotFound.
func (uc *userUseCase) DeleteUser(ctx context.Context, principal domain.Principal, id int64) (*domain.OperationResult, error) {
	if denied := uc.authorize(principal, domain.OperationDelete); denied != nil {
		return denied, nil
	}
	if id <= 0 {
		uc.log.Warnf("Use Case: Delete user failed - invalid user ID: %d", id)
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidUserID, id)
	}

	if _, err := uc.userRepo.GetUserByID(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to get user ID %d for delete: %v", id, err)
		return nil, err
	}
	if err := uc.userRepo.DeleteUser(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete user ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User deleted successfully. ID: %d", id)
	return domain.Success(MsgUserDeleted, nil), nil
}

func (uc *userUseCase) denyRoleGrant(principal domain.Principal) *domain.OperationResult {
	reason := fmt.Sprintf("assigning ADMIN or MANAGER roles requires %s", domain.RequireElevated)
	uc.log.WithField("principal", principal.ID).Warnf("Use Case: Access denied - %s", reason)
	return domain.AuthorizationFailure(reason)
}
