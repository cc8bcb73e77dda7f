package user

import (
	"time"
)

// User is the login identity. Profiles hang off it one-to-one.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

type CreateUserInput struct {
	Username     string
	PasswordHash string
}
