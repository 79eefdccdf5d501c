package domain

import (
	"errors"
	"time"
)

// ErrUserNotFound is returned by repositories when no user matches.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when registering an email that is already taken.
var ErrUserExists = errors.New("user already exists")

// User is an account allowed to sign in to the tracker.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
