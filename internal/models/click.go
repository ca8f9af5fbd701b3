package models

import "time"

// ClickEvent is an immutable record of a single redirect visit. Events
// reference URLs by short code rather than by a storage-level foreign key,
// and survive deletion of the URL they point to.
type ClickEvent struct {
	ID        int64
	ShortCode string
	IPAddress string
	// Geo fields are resolved from the visitor IP. Empty when the lookup
	// produced no data for the dimension.
	Country string
	Region  string
	City    string
	// Referrer holds the classified referrer ("direct", "social", "search")
	// or the raw Referer header when it matches no known class.
	Referrer  string
	UserAgent string
	// Device fields are derived from the User-Agent header. Empty when
	// unparseable.
	DeviceType      string
	Browser         string
	OperatingSystem string
	UTMSource       string
	UTMMedium       string
	UTMCampaign     string
	ClickedAt       time.Time
}

// ClickContext carries the request-derived metadata of a redirect visit
// into the service layer.
type ClickContext struct {
	IPAddress   string
	Referrer    string
	UserAgent   string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
}

// GeoLocation is the result of an IP geolocation lookup.
type GeoLocation struct {
	Country string
	Region  string
	City    string
}

// DeviceInfo is the result of user-agent classification.
type DeviceInfo struct {
	DeviceType      string
	Browser         string
	OperatingSystem string
}
