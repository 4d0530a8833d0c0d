package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/domain/entity"
	"github.com/spicon/registration/internal/infrastructure/persistence/sqlite"
)

// UserRepository implements port.UserRepository on sqlite
type UserRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlite.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, name, username, email, password_hash, role, region, created_at`

// Create persists a new committee account
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Username,
		nullString(user.Email),
		user.PasswordHash,
		user.Role.String(),
		user.Region.String(),
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already registered", entity.ErrConflict)
		}
		r.logger.Error("Failed to create user",
			zap.String("username", user.Username),
			zap.Error(err))
		return sqlite.MapErr(fmt.Errorf("create user: %w", err))
	}
	return nil
}

// GetByID loads an account by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", entity.ErrNotFound, id)
		}
		return nil, sqlite.MapErr(fmt.Errorf("get user: %w", err))
	}
	return user, nil
}

// FindForLogin returns users whose username or email matches, optionally
// narrowed by role and region
func (r *UserRepository) FindForLogin(ctx context.Context, usernameOrEmail string, role entity.Role, region entity.Region) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE (username = ? OR email = ?)`
	args := []interface{}{usernameOrEmail, usernameOrEmail}

	if role != "" {
		query += ` AND role = ?`
		args = append(args, role.String())
	}
	if region != "" {
		query += ` AND region = ?`
		args = append(args, region.String())
	}

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapErr(fmt.Errorf("find users for login: %w", err))
	}
	defer rows.Close()

	var out []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

// List returns every committee account, newest first
func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, sqlite.MapErr(fmt.Errorf("list users: %w", err))
	}
	defer rows.Close()

	var out []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

// ExistsByEmail reports whether a user with the email is registered
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, sqlite.MapErr(fmt.Errorf("check email: %w", err))
	}
	return n > 0, nil
}

func scanUser(row rowScanner) (*entity.User, error) {
	var user entity.User
	var email sql.NullString
	var role, region string

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&email,
		&user.PasswordHash,
		&role,
		&region,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Email = email.String
	user.Role = entity.Role(role)
	user.Region = entity.Region(region)
	return &user, nil
}
