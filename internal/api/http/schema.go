package http

import (
	"fmt"
	"time"

	"github.com/avolkov/url-shortener/internal/models"
)

type shortenRequest struct {
	URL         string     `json:"url" validate:"required,url,startswith=http"`
	CustomAlias string     `json:"custom_alias" validate:"omitempty,min=4,max=20,short_code"`
	ExpiresAt   *time.Time `json:"expires_at" validate:"omitempty"`
}

type updateURLRequest struct {
	URL       *string    `json:"url" validate:"omitempty,url,startswith=http"`
	ExpiresAt *time.Time `json:"expires_at" validate:"omitempty"`
	Active    *bool      `json:"active" validate:"omitempty"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

type urlResponse struct {
	ID          int64      `json:"id"`
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	URL         string     `json:"url"`
	TotalClicks int64      `json:"total_clicks"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toURLResponse(url *models.URL, baseURL string) urlResponse {
	return urlResponse{
		ID:          url.ID,
		ShortCode:   url.ShortCode,
		ShortURL:    fmt.Sprintf("%s/r/%s", baseURL, url.ShortCode),
		URL:         url.OriginalURL,
		TotalClicks: url.TotalClicks,
		ExpiresAt:   url.ExpiresAt,
		Active:      url.Active,
		CreatedAt:   url.CreatedAt,
		UpdatedAt:   url.UpdatedAt,
	}
}

func toURLResponses(urls []*models.URL, baseURL string) []urlResponse {
	resps := make([]urlResponse, 0, len(urls))
	for _, url := range urls {
		resps = append(resps, toURLResponse(url, baseURL))
	}
	return resps
}

type analyticsResponse struct {
	ShortCode               string           `json:"short_code"`
	TotalClicks             int64            `json:"total_clicks"`
	ClicksByCountry         map[string]int64 `json:"clicks_by_country"`
	ClicksByRegion          map[string]int64 `json:"clicks_by_region"`
	ClicksByReferrer        map[string]int64 `json:"clicks_by_referrer"`
	ClicksByDate            map[string]int64 `json:"clicks_by_date"`
	ClicksByDeviceType      map[string]int64 `json:"clicks_by_device_type"`
	ClicksByBrowser         map[string]int64 `json:"clicks_by_browser"`
	ClicksByOperatingSystem map[string]int64 `json:"clicks_by_operating_system"`
}

func toAnalyticsResponse(summary *models.AnalyticsSummary) analyticsResponse {
	return analyticsResponse{
		ShortCode:               summary.ShortCode,
		TotalClicks:             summary.TotalClicks,
		ClicksByCountry:         summary.ClicksByCountry,
		ClicksByRegion:          summary.ClicksByRegion,
		ClicksByReferrer:        summary.ClicksByReferrer,
		ClicksByDate:            summary.ClicksByDate,
		ClicksByDeviceType:      summary.ClicksByDeviceType,
		ClicksByBrowser:         summary.ClicksByBrowser,
		ClicksByOperatingSystem: summary.ClicksByOperatingSystem,
	}
}
