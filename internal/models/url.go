package models

import "time"

// URL represents a shortened URL and its associated metadata.
type URL struct {
	// ID is the unique identifier for the shortened URL record.
	ID int64
	// ShortCode is the short code or key associated with the original URL.
	// Codes are case-sensitive and globally unique.
	ShortCode string
	// OriginalURL is the original, full-length URL that the short code points to.
	OriginalURL string
	// UserID identifies the owner of the shortened URL.
	UserID string
	// TotalClicks tracks the number of times the shortened URL has been visited.
	TotalClicks int64
	// ExpiresAt is an optional expiration timestamp. A nil value means the
	// URL never expires.
	ExpiresAt *time.Time
	// Active reports whether the URL still accepts redirects. Expired URLs
	// are flipped to inactive on first access.
	Active bool
	// CreatedAt is the timestamp indicating when the shortened URL was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp indicating when the shortened URL was last updated.
	UpdatedAt time.Time
}

// Expired reports whether the URL has an expiration timestamp in the past.
func (u *URL) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && u.ExpiresAt.Before(now)
}

// UpdateURLParams carries the mutable fields of a URL for partial updates.
// Nil fields are left unchanged.
type UpdateURLParams struct {
	OriginalURL *string
	ExpiresAt   *time.Time
	Active      *bool
}
