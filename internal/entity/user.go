package entity

import "context"

type User struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	HashedPassword string `json:"-"`
}

type UserRepositoryInterface interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}
