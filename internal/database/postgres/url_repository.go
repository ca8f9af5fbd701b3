package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/url-shortener/internal/database"
	"github.com/avolkov/url-shortener/internal/models"
)

type urlRecord struct {
	ID          int64        `db:"id"`
	ShortCode   string       `db:"short_code"`
	OriginalURL string       `db:"original_url"`
	UserID      string       `db:"user_id"`
	TotalClicks int64        `db:"total_clicks"`
	ExpiresAt   sql.NullTime `db:"expires_at"`
	Active      bool         `db:"active"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (r *urlRecord) ToURL() *models.URL {
	url := &models.URL{
		ID:          r.ID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		UserID:      r.UserID,
		TotalClicks: r.TotalClicks,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.ExpiresAt.Valid {
		expiresAt := r.ExpiresAt.Time
		url.ExpiresAt = &expiresAt
	}

	return url
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

func (r *URLRepository) Create(ctx context.Context, shortCode, originalURL, userID string, expiresAt *time.Time) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Create"

	rec := new(urlRecord)
	query := `INSERT INTO urls(short_code, original_url, user_id, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, shortCode, originalURL, userID, expiresAt)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByShortCode"

	rec := new(urlRecord)
	query := `SELECT * FROM urls WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) ListByUserID(ctx context.Context, userID string) ([]*models.URL, error) {
	const op = "database.postgres.URLRepository.ListByUserID"

	var recs []urlRecord
	query := `SELECT * FROM urls WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &recs, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list url records: %w", op, err)
	}

	urls := make([]*models.URL, 0, len(recs))
	for i := range recs {
		urls = append(urls, recs[i].ToURL())
	}

	return urls, nil
}

func (r *URLRepository) Update(ctx context.Context, shortCode string, params models.UpdateURLParams) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Update"

	rec := new(urlRecord)
	query := `UPDATE urls
		SET original_url = COALESCE($1, original_url),
			expires_at = COALESCE($2, expires_at),
			active = COALESCE($3, active),
			updated_at = now()
		WHERE short_code = $4
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, params.OriginalURL, params.ExpiresAt, params.Active, shortCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) Deactivate(ctx context.Context, shortCode string) error {
	const op = "database.postgres.URLRepository.Deactivate"

	query := `UPDATE urls
		SET active = FALSE, updated_at = now()
		WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to deactivate url record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return nil
}

// IncrementClickCount bumps the click counter in a single statement so that
// concurrent redirects on the same short code never lose an increment.
func (r *URLRepository) IncrementClickCount(ctx context.Context, shortCode string) (int64, error) {
	const op = "database.postgres.URLRepository.IncrementClickCount"

	var totalClicks int64
	query := `UPDATE urls
		SET total_clicks = total_clicks + 1, updated_at = now()
		WHERE short_code = $1
		RETURNING total_clicks`

	err := r.db.GetContext(ctx, &totalClicks, query, shortCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return 0, fmt.Errorf("%s: failed to increment click count: %w", op, err)
	}

	return totalClicks, nil
}

// Delete removes the url record. Click events referencing the short code are
// kept, matching the append-only analytics log.
func (r *URLRepository) Delete(ctx context.Context, shortCode string) error {
	const op = "database.postgres.URLRepository.Delete"

	query := `DELETE FROM urls WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to delete url record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return nil
}
