// Package geo resolves visitor IP addresses to a coarse location.
//
// Resolvers never fail: lookup errors and unparseable addresses degrade to
// the Unknown sentinel so that a broken geolocation provider can never block
// a redirect.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/avolkov/url-shortener/internal/models"
)

const (
	// Unknown is the sentinel value for fields a lookup produced no data for.
	Unknown = "Unknown"
	// Local is the sentinel value for loopback and private addresses, which
	// carry no meaningful geography.
	Local = "Local"
)

func unknownLocation() models.GeoLocation {
	return models.GeoLocation{Country: Unknown, Region: Unknown, City: Unknown}
}

func localLocation() models.GeoLocation {
	return models.GeoLocation{Country: Local, Region: Local, City: Local}
}

func isLocalIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

// StaticResolver is a placeholder resolver used when no geolocation provider
// is configured. It only distinguishes local addresses from everything else.
type StaticResolver struct{}

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{}
}

func (r *StaticResolver) Resolve(_ context.Context, ipAddress string) models.GeoLocation {
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return unknownLocation()
	}
	if isLocalIP(ip) {
		return localLocation()
	}

	return unknownLocation()
}

const defaultLookupTimeout = 2 * time.Second

// HTTPResolver queries an ip-api style JSON endpoint
// (GET {baseURL}/{ip} -> {"country":...,"regionName":...,"city":...}).
type HTTPResolver struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewHTTPResolver(baseURL string, logger *slog.Logger) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultLookupTimeout},
		logger:  logger,
	}
}

type lookupResponse struct {
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
}

func (r *HTTPResolver) Resolve(ctx context.Context, ipAddress string) models.GeoLocation {
	const op = "geo.HTTPResolver.Resolve"

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return unknownLocation()
	}
	if isLocalIP(ip) {
		return localLocation()
	}

	loc, err := r.lookup(ctx, ipAddress)
	if err != nil {
		r.logger.Warn("geolocation lookup failed",
			slog.String("op", op),
			slog.String("ip", ipAddress),
			slog.Any("err", err),
		)

		return unknownLocation()
	}

	return loc
}

func (r *HTTPResolver) lookup(ctx context.Context, ipAddress string) (models.GeoLocation, error) {
	const op = "geo.HTTPResolver.lookup"

	loc := unknownLocation()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", r.baseURL, ipAddress), nil)
	if err != nil {
		return loc, fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return loc, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return loc, fmt.Errorf("%s: unexpected status code: %d", op, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return loc, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	if body.Country != "" {
		loc.Country = body.Country
	}
	if body.RegionName != "" {
		loc.Region = body.RegionName
	}
	if body.City != "" {
		loc.City = body.City
	}

	return loc, nil
}
