package model

import "time"

// User is a registered account. HashedPassword never leaves the service.
type User struct {
	ID             string     `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          string     `json:"email" db:"email"`
	FullName       *string    `json:"full_name" db:"full_name"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	HashedPassword string     `json:"-" db:"hashed_password"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at" db:"updated_at"`
}

// Token is an issued bearer credential as returned to clients.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
