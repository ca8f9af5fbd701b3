package database

import "errors"

var (
	// ErrShortCodeExists is returned when an attempt is made to create
	// a new shortened URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when an attempt is made to retrieve
	// a URL using a short code that doesn't exist.
	ErrURLNotFound = errors.New("url not found")
	// ErrUserExists is returned when an attempt is made to register
	// a user with a username or email that is already taken.
	ErrUserExists = errors.New("user exists")
	// ErrUserNotFound is returned when an attempt is made to retrieve
	// a user that doesn't exist.
	ErrUserNotFound = errors.New("user not found")
)
