package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/avolkov/url-shortener/internal/database"
	"github.com/avolkov/url-shortener/internal/models"
)

var (
	// ErrMaxRetriesExceeded is returned when the maximum number of retries for generating a short code is exceeded.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
	// ErrAccessDenied is returned when a URL is accessed by someone other than its owner.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidOriginalURL is returned when the original URL is not an http(s) URL.
	ErrInvalidOriginalURL = errors.New("invalid original url")
	// ErrInvalidAlias is returned when a custom alias violates the short code format.
	ErrInvalidAlias = errors.New("invalid custom alias")
)

var (
	originalURLPattern = regexp.MustCompile(`^https?://`)
	aliasPattern       = regexp.MustCompile(`^[A-Za-z0-9_-]{4,20}$`)
)

// URLRepository defines the interface for working with URLs at the business logic layer.
type URLRepository interface {
	// Create inserts a new shortened URL. Returns database.ErrShortCodeExists
	// when the short code is already taken.
	Create(ctx context.Context, shortCode, originalURL, userID string, expiresAt *time.Time) (*models.URL, error)

	// GetByShortCode retrieves a URL by its short code without side effects.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// ListByUserID retrieves all URLs owned by the given user.
	ListByUserID(ctx context.Context, userID string) ([]*models.URL, error)

	// Update applies a partial update; nil fields in params are left unchanged.
	Update(ctx context.Context, shortCode string, params models.UpdateURLParams) (*models.URL, error)

	// Deactivate flips the URL's active flag to false.
	Deactivate(ctx context.Context, shortCode string) error

	// IncrementClickCount atomically bumps the click counter and returns the new value.
	IncrementClickCount(ctx context.Context, shortCode string) (int64, error)

	// Delete removes the URL record. Click events are not cascade-deleted.
	Delete(ctx context.Context, shortCode string) error
}

// ClickEventRepository defines the interface for the append-only click log.
type ClickEventRepository interface {
	Create(ctx context.Context, event *models.ClickEvent) (*models.ClickEvent, error)
	ListByShortCode(ctx context.Context, shortCode string) ([]*models.ClickEvent, error)
}

// ShortCodeGenerator produces candidate short codes.
type ShortCodeGenerator interface {
	Generate() (string, error)
}

// GeoLocationResolver maps a visitor IP to a coarse location. Implementations
// never fail; missing data degrades to sentinel values.
type GeoLocationResolver interface {
	Resolve(ctx context.Context, ipAddress string) models.GeoLocation
}

// UserAgentClassifier derives device information from a raw User-Agent string.
type UserAgentClassifier interface {
	Classify(userAgent string) models.DeviceInfo
}

// ShortenParams carries the inputs of a shorten request. CustomAlias and
// ExpiresAt are optional.
type ShortenParams struct {
	OriginalURL string
	UserID      string
	CustomAlias string
	ExpiresAt   *time.Time
}

// URLService owns the lifecycle of shortened URLs: creation with uniqueness
// guarantees, the redirect-and-tracking path, and ownership-scoped CRUD.
type URLService struct {
	urlRepo    URLRepository
	clickRepo  ClickEventRepository
	generator  ShortCodeGenerator
	geo        GeoLocationResolver
	classifier UserAgentClassifier
	logger     *slog.Logger
}

func NewURLService(
	urlRepo URLRepository,
	clickRepo ClickEventRepository,
	generator ShortCodeGenerator,
	geo GeoLocationResolver,
	classifier UserAgentClassifier,
	logger *slog.Logger,
) *URLService {
	return &URLService{
		urlRepo:    urlRepo,
		clickRepo:  clickRepo,
		generator:  generator,
		geo:        geo,
		classifier: classifier,
		logger:     logger,
	}
}

// Shorten creates a shortened URL for the given owner. With a custom alias the
// short code is the alias and a collision surfaces database.ErrShortCodeExists;
// otherwise codes are generated until an unused one is found, capped at a fixed
// number of attempts.
func (s *URLService) Shorten(ctx context.Context, params ShortenParams) (*models.URL, error) {
	const op = "service.URLService.Shorten"
	const maxRetries = 5

	if !originalURLPattern.MatchString(params.OriginalURL) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidOriginalURL)
	}

	if params.CustomAlias != "" {
		if !aliasPattern.MatchString(params.CustomAlias) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidAlias)
		}

		url, err := s.urlRepo.Create(ctx, params.CustomAlias, params.OriginalURL, params.UserID, params.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	for i := 0; i < maxRetries; i++ {
		shortCode, err := s.generator.Generate()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		url, err := s.urlRepo.Create(ctx, shortCode, params.OriginalURL, params.UserID, params.ExpiresAt)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// Redirect resolves a short code to its original URL and records the visit.
//
// Inactive and expired URLs surface database.ErrURLNotFound, indistinguishable
// from an unknown code. Expiry is lazy: the first access past the deadline
// deactivates the record, and later accesses fail on the active flag alone.
// Collaborator failures degrade the recorded click data but never block the
// redirect itself.
func (s *URLService) Redirect(ctx context.Context, shortCode string, click models.ClickContext) (string, error) {
	const op = "service.URLService.Redirect"

	url, err := s.urlRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return "", fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if !url.Active {
		return "", fmt.Errorf("%s: url is inactive: %w", op, database.ErrURLNotFound)
	}

	if url.Expired(time.Now()) {
		if err := s.urlRepo.Deactivate(ctx, shortCode); err != nil {
			return "", fmt.Errorf("%s: failed to deactivate expired url: %w", op, err)
		}

		return "", fmt.Errorf("%s: url has expired: %w", op, database.ErrURLNotFound)
	}

	s.trackClick(ctx, url, click)

	if _, err := s.urlRepo.IncrementClickCount(ctx, shortCode); err != nil {
		return "", fmt.Errorf("%s: failed to increment click count: %w", op, err)
	}

	return url.OriginalURL, nil
}

// trackClick appends one click event for the visit. A failed append is logged
// and swallowed: the click counter and the event log may diverge, which is
// tolerated.
func (s *URLService) trackClick(ctx context.Context, url *models.URL, click models.ClickContext) {
	const op = "service.URLService.trackClick"

	location := s.geo.Resolve(ctx, click.IPAddress)
	device := s.classifier.Classify(click.UserAgent)

	event := &models.ClickEvent{
		ShortCode:       url.ShortCode,
		IPAddress:       click.IPAddress,
		Country:         location.Country,
		Region:          location.Region,
		City:            location.City,
		Referrer:        classifyReferrer(click.Referrer),
		UserAgent:       click.UserAgent,
		DeviceType:      device.DeviceType,
		Browser:         device.Browser,
		OperatingSystem: device.OperatingSystem,
		UTMSource:       click.UTMSource,
		UTMMedium:       click.UTMMedium,
		UTMCampaign:     click.UTMCampaign,
	}

	if _, err := s.clickRepo.Create(ctx, event); err != nil {
		s.logger.Error("failed to record click event",
			slog.String("op", op),
			slog.String("short_code", url.ShortCode),
			slog.Any("err", err),
		)
	}
}

var (
	socialReferrers = []string{"facebook", "twitter", "linkedin", "instagram"}
	searchReferrers = []string{"google", "bing", "yahoo"}
)

// classifyReferrer buckets a Referer header into "direct", "social" or
// "search"; anything else passes through unchanged.
func classifyReferrer(referrer string) string {
	if referrer == "" {
		return "direct"
	}

	for _, s := range socialReferrers {
		if strings.Contains(referrer, s) {
			return "social"
		}
	}

	for _, s := range searchReferrers {
		if strings.Contains(referrer, s) {
			return "search"
		}
	}

	return referrer
}

// Get retrieves a URL for its owner.
func (s *URLService) Get(ctx context.Context, shortCode, userID string) (*models.URL, error) {
	const op = "service.URLService.Get"

	url, err := s.urlRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	if url.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	return url, nil
}

// ListByUser retrieves all URLs owned by the given user.
func (s *URLService) ListByUser(ctx context.Context, userID string) ([]*models.URL, error) {
	const op = "service.URLService.ListByUser"

	urls, err := s.urlRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return urls, nil
}

// Update applies an ownership-checked partial update. Nil fields in params
// leave the stored values untouched.
func (s *URLService) Update(ctx context.Context, shortCode, userID string, params models.UpdateURLParams) (*models.URL, error) {
	const op = "service.URLService.Update"

	url, err := s.urlRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	if url.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	if params.OriginalURL != nil && !originalURLPattern.MatchString(*params.OriginalURL) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidOriginalURL)
	}

	url, err = s.urlRepo.Update(ctx, shortCode, params)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to update url: %w", op, err)
	}

	return url, nil
}

// Delete removes a URL after an ownership check. Click events referencing the
// short code are orphaned, not cascade-deleted.
func (s *URLService) Delete(ctx context.Context, shortCode, userID string) error {
	const op = "service.URLService.Delete"

	url, err := s.urlRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	if url.UserID != userID {
		return fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	if err := s.urlRepo.Delete(ctx, shortCode); err != nil {
		return fmt.Errorf("%s: failed to delete url: %w", op, err)
	}

	return nil
}
