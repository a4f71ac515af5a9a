package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"user_admin/internal/domain"
	"user_admin/pkg/password"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	hash, err := password.Hash(user.Password)
	if err != nil {
		r.log.Errorf("Repository: Failed to hash password for user '%s': %v", user.UserName, err)
		return nil, err
	}

	r.log.Debugf("Repository: Attempting to create user: %s", user.UserName)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO users (user_name, password_hash, email)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query, user.UserName, hash, user.Email).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warnf("Repository: Attempted to create duplicate user: %s", user.UserName)
			return nil, fmt.Errorf("%w: user '%s' or email '%s'", domain.ErrUserAlreadyExists, user.UserName, user.Email)
		}
		r.log.Errorf("Repository: Failed to create user '%s': %v", user.UserName, err)
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	roles, err := r.assignRoles(ctx, tx, user.ID, user.Roles)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		r.log.Errorf("Repository: Failed to commit user '%s': %v", user.UserName, err)
		return nil, fmt.Errorf("could not commit user: %w", err)
	}

	user.Password = hash
	user.Roles = roles
	r.log.Infof("Repository: User created successfully with ID: %d, Name: %s", user.ID, user.UserName)
	return user, nil
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
        SELECT id, user_name, password_hash, email, created_at, updated_at
        FROM users
        WHERE id = $1`

	r.log.Debugf("Repository: Attempting to find user by ID: %d", id)

	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with ID %d not found", id)
			return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, id)
		}
		r.log.Errorf("Repository: Failed to get user by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}

	if user.Roles, err = r.rolesOf(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) GetUserByName(ctx context.Context, userName string) (*domain.User, error) {
	query := `
        SELECT id, user_name, password_hash, email, created_at, updated_at
        FROM users
        WHERE user_name = $1`

	r.log.Debugf("Repository: Attempting to find user by name: %s", userName)

	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, userName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with name %s not found", userName)
			return nil, fmt.Errorf("%w: name %s", domain.ErrUserNotFound, userName)
		}
		r.log.Errorf("Repository: Failed to get user by name %s: %v", userName, err)
		return nil, fmt.Errorf("could not get user by name: %w", err)
	}

	if user.Roles, err = r.rolesOf(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	hash, err := password.Hash(user.Password)
	if err != nil {
		r.log.Errorf("Repository: Failed to hash password for user ID %d: %v", user.ID, err)
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        UPDATE users
        SET user_name = $1, password_hash = $2, email = $3, updated_at = NOW()
        WHERE id = $4
        RETURNING created_at, updated_at`

	err = tx.QueryRowContext(ctx, query, user.UserName, hash, user.Email, user.ID).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with ID %d not found for update", user.ID)
			return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, user.ID)
		}
		if isUniqueViolation(err) {
			r.log.Warnf("Repository: Update of user ID %d collides with an existing user", user.ID)
			return nil, fmt.Errorf("%w: user '%s' or email '%s'", domain.ErrUserAlreadyExists, user.UserName, user.Email)
		}
		r.log.Errorf("Repository: Failed to update user ID %d: %v", user.ID, err)
		return nil, fmt.Errorf("could not update user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, user.ID); err != nil {
		r.log.Errorf("Repository: Failed to clear roles of user ID %d: %v", user.ID, err)
		return nil, fmt.Errorf("could not clear user roles: %w", err)
	}
	roles, err := r.assignRoles(ctx, tx, user.ID, user.Roles)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		r.log.Errorf("Repository: Failed to commit update of user ID %d: %v", user.ID, err)
		return nil, fmt.Errorf("could not commit user update: %w", err)
	}

	user.Password = hash
	user.Roles = roles
	r.log.Infof("Repository: User updated successfully with ID: %d", user.ID)
	return user, nil
}

func (r *postgresUserRepository) DeleteUser(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete user ID %d: %v", id, err)
		return fmt.Errorf("could not delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after deleting user ID %d: %v", id, err)
		return fmt.Errorf("could not confirm user deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent user ID %d", id)
		return fmt.Errorf("%w: id %d", domain.ErrUserNotFound, id)
	}

	r.log.Infof("Repository: User deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `
        SELECT id, user_name, password_hash, email, created_at, updated_at
        FROM users
        ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Repository: Failed to list users: %v", err)
		return nil, fmt.Errorf("could not list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	index := make(map[int64]int)
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			r.log.Errorf("Repository: Failed to scan user row: %v", err)
			return nil, fmt.Errorf("could not scan user: %w", err)
		}
		index[user.ID] = len(users)
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during users list iteration: %v", err)
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	if len(users) == 0 {
		return users, nil
	}

	roleQuery := `
        SELECT ur.user_id, r.id, r.name
        FROM user_roles ur
        JOIN roles r ON r.id = ur.role_id
        ORDER BY ur.user_id, r.id`

	roleRows, err := r.db.QueryContext(ctx, roleQuery)
	if err != nil {
		r.log.Errorf("Repository: Failed to list user roles: %v", err)
		return nil, fmt.Errorf("could not list user roles: %w", err)
	}
	defer roleRows.Close()

	for roleRows.Next() {
		var userID int64
		var role domain.Role
		if err := roleRows.Scan(&userID, &role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("could not scan user role: %w", err)
		}
		if i, ok := index[userID]; ok {
			users[i].Roles = append(users[i].Roles, role)
		}
	}
	if err = roleRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user roles: %w", err)
	}

	r.log.Infof("Repository: Retrieved %d users", len(users))
	return users, nil
}

func (r *postgresUserRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY id ASC`)
	if err != nil {
		r.log.Errorf("Repository: Failed to list roles: %v", err)
		return nil, fmt.Errorf("could not list roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("could not scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}
	return roles, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresUserRepository) scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.UserName,
		&user.Password,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) rolesOf(ctx context.Context, userID int64) ([]domain.Role, error) {
	query := `
        SELECT r.id, r.name
        FROM roles r
        JOIN user_roles ur ON ur.role_id = r.id
        WHERE ur.user_id = $1
        ORDER BY r.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to load roles of user ID %d: %v", userID, err)
		return nil, fmt.Errorf("could not load user roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("could not scan user role: %w", err)
		}
		roles = append(roles, role)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user roles: %w", err)
	}
	return roles, nil
}

// assignRoles links the named roles to the user and returns them with their catalog IDs.
func (r *postgresUserRepository) assignRoles(ctx context.Context, tx *sql.Tx, userID int64, wanted []domain.Role) ([]domain.Role, error) {
	if len(wanted) == 0 {
		return []domain.Role{}, nil
	}
	names := make([]string, 0, len(wanted))
	for _, role := range wanted {
		names = append(names, string(role.Name))
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM roles WHERE name = ANY($1) ORDER BY id`, pq.Array(names))
	if err != nil {
		r.log.Errorf("Repository: Failed to resolve roles %v: %v", names, err)
		return nil, fmt.Errorf("could not resolve roles: %w", err)
	}
	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("could not scan role: %w", err)
		}
		roles = append(roles, role)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}
	if len(roles) != len(uniqueNames(names)) {
		r.log.Warnf("Repository: Unknown role among %v", names)
		return nil, fmt.Errorf("%w: %v", domain.ErrRoleNotFound, names)
	}

	for _, role := range roles {
		if _, err := tx.ExecContext(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`, userID, role.ID); err != nil {
			r.log.Errorf("Repository: Failed to assign role %s to user ID %d: %v", role.Name, userID, err)
			return nil, fmt.Errorf("could not assign role: %w", err)
		}
	}
	return roles, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func uniqueNames(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
