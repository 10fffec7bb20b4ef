package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/xavierca1/artisan-crm/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `SELECT id, username, name, hashed_password FROM users WHERE username = $1`

	var user entity.User
	err := r.DB.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.HashedPassword,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		log.Printf("user repository: query failed in FindByUsername: %v", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	return &user, nil
}
