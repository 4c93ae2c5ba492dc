package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash, string(u.Role), u.Enabled).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if constraint, ok := uniqueViolation(err); ok {
		switch constraint {
		case "users_username_key":
			return entity.ErrUsernameTaken
		case "users_email_key":
			return entity.ErrEmailTaken
		}
	}
	return err
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, enabled, created_at, updated_at
		FROM users WHERE username = $1
	`
	var u entity.User
	var role string
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.Enabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return &u, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	return exists, err
}
