package service

import (
	"context"
	"fmt"

	"github.com/avolkov/url-shortener/internal/models"
)

// AnalyticsService computes grouped click counts for a short code.
type AnalyticsService struct {
	urlRepo   URLRepository
	clickRepo ClickEventRepository
}

func NewAnalyticsService(urlRepo URLRepository, clickRepo ClickEventRepository) *AnalyticsService {
	return &AnalyticsService{
		urlRepo:   urlRepo,
		clickRepo: clickRepo,
	}
}

// Analytics aggregates all click events of a short code into per-dimension
// counts. Events with an empty value for a dimension are excluded from that
// dimension's map rather than counted as unknown. TotalClicks comes from the
// URL record's counter, not from the event volume.
func (s *AnalyticsService) Analytics(ctx context.Context, shortCode, userID string) (*models.AnalyticsSummary, error) {
	const op = "service.AnalyticsService.Analytics"

	url, err := s.urlRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	if url.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}

	clicks, err := s.clickRepo.ListByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list click events: %w", op, err)
	}

	summary := &models.AnalyticsSummary{
		ShortCode:               shortCode,
		TotalClicks:             url.TotalClicks,
		ClicksByCountry:         make(map[string]int64),
		ClicksByRegion:          make(map[string]int64),
		ClicksByReferrer:        make(map[string]int64),
		ClicksByDate:            make(map[string]int64),
		ClicksByDeviceType:      make(map[string]int64),
		ClicksByBrowser:         make(map[string]int64),
		ClicksByOperatingSystem: make(map[string]int64),
	}

	for _, click := range clicks {
		countInto(summary.ClicksByCountry, click.Country)
		countInto(summary.ClicksByRegion, click.Region)
		countInto(summary.ClicksByReferrer, click.Referrer)
		countInto(summary.ClicksByDeviceType, click.DeviceType)
		countInto(summary.ClicksByBrowser, click.Browser)
		countInto(summary.ClicksByOperatingSystem, click.OperatingSystem)

		summary.ClicksByDate[click.ClickedAt.UTC().Format("2006-01-02")]++
	}

	return summary, nil
}

func countInto(counts map[string]int64, value string) {
	if value == "" {
		return
	}
	counts[value]++
}
