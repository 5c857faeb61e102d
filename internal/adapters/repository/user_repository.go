package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/ports"
)

const userColumns = `id, COALESCE(name, '') AS name, email, password, "passwordPlain"`

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entities.User) error {
	query := r.db.Rebind(`
		INSERT INTO users (name, email, password, "passwordPlain")
		VALUES (?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.PasswordPlain,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return entities.Conflict("User already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	var user entities.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)

	var user entities.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryImpl) UpdateName(ctx context.Context, id int64, name string) error {
	query := r.db.Rebind(`UPDATE users SET name = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("update user name: %w", err)
	}

	return expectAffected(result, entities.ErrUserNotFound)
}

func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, id int64, hash string, plain *string) error {
	query := r.db.Rebind(`UPDATE users SET password = ?, "passwordPlain" = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, hash, plain, id)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	return expectAffected(result, entities.ErrUserNotFound)
}
