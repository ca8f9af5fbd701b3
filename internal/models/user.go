package models

import "time"

// User represents a registered account that owns shortened URLs.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
