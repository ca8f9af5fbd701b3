package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/url-shortener/internal/models"
)

type clickEventRecord struct {
	ID              int64          `db:"id"`
	ShortCode       string         `db:"short_code"`
	IPAddress       string         `db:"ip_address"`
	Country         sql.NullString `db:"country"`
	Region          sql.NullString `db:"region"`
	City            sql.NullString `db:"city"`
	Referrer        sql.NullString `db:"referrer"`
	UserAgent       sql.NullString `db:"user_agent"`
	DeviceType      sql.NullString `db:"device_type"`
	Browser         sql.NullString `db:"browser"`
	OperatingSystem sql.NullString `db:"operating_system"`
	UTMSource       sql.NullString `db:"utm_source"`
	UTMMedium       sql.NullString `db:"utm_medium"`
	UTMCampaign     sql.NullString `db:"utm_campaign"`
	ClickedAt       time.Time      `db:"clicked_at"`
}

func (r *clickEventRecord) ToClickEvent() *models.ClickEvent {
	return &models.ClickEvent{
		ID:              r.ID,
		ShortCode:       r.ShortCode,
		IPAddress:       r.IPAddress,
		Country:         r.Country.String,
		Region:          r.Region.String,
		City:            r.City.String,
		Referrer:        r.Referrer.String,
		UserAgent:       r.UserAgent.String,
		DeviceType:      r.DeviceType.String,
		Browser:         r.Browser.String,
		OperatingSystem: r.OperatingSystem.String,
		UTMSource:       r.UTMSource.String,
		UTMMedium:       r.UTMMedium.String,
		UTMCampaign:     r.UTMCampaign.String,
		ClickedAt:       r.ClickedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ClickEventRepository persists the append-only redirect visit log. Events
// are never updated or deleted.
type ClickEventRepository struct {
	db *sqlx.DB
}

func NewClickEventRepository(db *sqlx.DB) *ClickEventRepository {
	return &ClickEventRepository{
		db: db,
	}
}

func (r *ClickEventRepository) Create(ctx context.Context, event *models.ClickEvent) (*models.ClickEvent, error) {
	const op = "database.postgres.ClickEventRepository.Create"

	rec := new(clickEventRecord)
	query := `INSERT INTO click_events(short_code, ip_address, country, region, city,
			referrer, user_agent, device_type, browser, operating_system,
			utm_source, utm_medium, utm_campaign)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query,
		event.ShortCode,
		event.IPAddress,
		nullString(event.Country),
		nullString(event.Region),
		nullString(event.City),
		nullString(event.Referrer),
		nullString(event.UserAgent),
		nullString(event.DeviceType),
		nullString(event.Browser),
		nullString(event.OperatingSystem),
		nullString(event.UTMSource),
		nullString(event.UTMMedium),
		nullString(event.UTMCampaign),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create click event record: %w", op, err)
	}

	return rec.ToClickEvent(), nil
}

func (r *ClickEventRepository) ListByShortCode(ctx context.Context, shortCode string) ([]*models.ClickEvent, error) {
	const op = "database.postgres.ClickEventRepository.ListByShortCode"

	var recs []clickEventRecord
	query := `SELECT * FROM click_events WHERE short_code = $1 ORDER BY clicked_at`

	err := r.db.SelectContext(ctx, &recs, query, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list click event records: %w", op, err)
	}

	events := make([]*models.ClickEvent, 0, len(recs))
	for i := range recs {
		events = append(events, recs[i].ToClickEvent())
	}

	return events, nil
}
