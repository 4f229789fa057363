package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

type LiveSessionRepository struct {
	db *sqlx.DB
}

func NewLiveSessionRepo(db *sqlx.DB) *LiveSessionRepository {
	return &LiveSessionRepository{db: db}
}

const liveSessionColumns = `
	id, vendor_id, latitude, longitude, address, start_time, end_time, auto_end_time,
	is_active, ended_by, estimated_customers, was_scheduled_duration, created_at, updated_at`

func (r *LiveSessionRepository) StartExclusive(ctx context.Context, session *domain.LiveSession, eligible func(domain.Vendor) error) (*domain.LiveSessionStart, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Concurrent starts, suspensions and status decisions for one vendor queue
	// on the vendor row, so eligibility is judged on the committed state.
	var locked domain.Vendor
	lockQuery := `SELECT id, status, is_active FROM vendors WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &locked, lockQuery, session.VendorID); err != nil {
		return nil, err
	}
	if eligible != nil {
		if err := eligible(locked); err != nil {
			return nil, err
		}
	}

	var replaced []domain.LiveSession
	endQuery := `
		UPDATE vendor_live_sessions
		SET is_active = false, end_time = $2, ended_by = 'vendor', updated_at = $2
		WHERE vendor_id = $1 AND is_active
		RETURNING ` + liveSessionColumns
	if err := tx.SelectContext(ctx, &replaced, endQuery, session.VendorID, session.StartTime); err != nil {
		return nil, err
	}

	insertQuery := `
		INSERT INTO vendor_live_sessions (
			vendor_id, latitude, longitude, address, start_time, end_time, auto_end_time,
			is_active, estimated_customers, was_scheduled_duration, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8, $9, $5, $5)
		RETURNING ` + liveSessionColumns

	var created domain.LiveSession
	err = tx.GetContext(ctx, &created, insertQuery,
		session.VendorID,
		nullFloat(session.Latitude),
		nullFloat(session.Longitude),
		nullString(session.Address),
		session.StartTime,
		session.EndTime,
		session.AutoEndTime,
		nullInt(session.EstimatedCustomers),
		nullInt(session.WasScheduledDuration),
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	result := &domain.LiveSessionStart{Session: &created}
	if len(replaced) > 0 {
		result.Replaced = &replaced[0]
	}
	return result, nil
}

func (r *LiveSessionRepository) EndActive(ctx context.Context, vendorID uuid.UUID, at time.Time, by domain.EndedBy) (*domain.LiveSession, error) {
	query := `
		UPDATE vendor_live_sessions
		SET is_active = false, end_time = $2, ended_by = $3, updated_at = $2
		WHERE vendor_id = $1 AND is_active
		RETURNING ` + liveSessionColumns

	var session domain.LiveSession
	if err := r.db.GetContext(ctx, &session, query, vendorID, at, by); err != nil {
		return nil, err
	}
	return &session, nil
}

// ExpireDue ends every active session whose auto end time is before now in a
// single statement and returns the rows it ended.
func (r *LiveSessionRepository) ExpireDue(ctx context.Context, now time.Time) ([]domain.LiveSession, error) {
	query := `
		UPDATE vendor_live_sessions
		SET is_active = false, end_time = $1, ended_by = 'timer', updated_at = $1
		WHERE is_active AND auto_end_time IS NOT NULL AND auto_end_time < $1
		RETURNING ` + liveSessionColumns

	sessions := make([]domain.LiveSession, 0)
	if err := r.db.SelectContext(ctx, &sessions, query, now); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *LiveSessionRepository) FindActiveByVendor(ctx context.Context, vendorID uuid.UUID) (*domain.LiveSession, error) {
	query := `SELECT ` + liveSessionColumns + `
		FROM vendor_live_sessions
		WHERE vendor_id = $1 AND is_active`

	var session domain.LiveSession
	if err := r.db.GetContext(ctx, &session, query, vendorID); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *LiveSessionRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]domain.LiveSession, error) {
	query := `SELECT ` + liveSessionColumns + `
		FROM vendor_live_sessions
		WHERE vendor_id = $1
		ORDER BY start_time DESC, id DESC
		LIMIT $2 OFFSET $3`

	sessions := make([]domain.LiveSession, 0)
	if err := r.db.SelectContext(ctx, &sessions, query, vendorID, limit, offset); err != nil {
		return nil, err
	}
	return sessions, nil
}

type liveVendorRow struct {
	domain.LiveSession
	BusinessName    string  `db:"business_name"`
	Category        *string `db:"category"`
	ProfileImageURL *string `db:"profile_image_url"`
	AverageRating   float64 `db:"average_rating"`
}

// ListLive returns active sessions that carry coordinates, joined with their
// vendor, optionally limited to a viewport.
func (r *LiveSessionRepository) ListLive(ctx context.Context, bounds *domain.Bounds) ([]domain.LiveVendor, error) {
	query := `
		SELECT
			s.id, s.vendor_id, s.latitude, s.longitude, s.address, s.start_time, s.end_time,
			s.auto_end_time, s.is_active, s.ended_by, s.estimated_customers,
			s.was_scheduled_duration, s.created_at, s.updated_at,
			v.business_name, v.category, v.profile_image_url,
			COALESCE(rs.average_rating, 0) AS average_rating
		FROM vendor_live_sessions s
		JOIN vendors v ON v.id = s.vendor_id
		LEFT JOIN LATERAL (
			SELECT AVG(r.rating)::float8 AS average_rating
			FROM vendor_review r
			WHERE r.vendor_id = v.id AND r.deleted_at IS NULL
		) rs ON true
		WHERE s.is_active
		  AND s.latitude IS NOT NULL
		  AND s.longitude IS NOT NULL
		  AND s.latitude NOT IN ('NaN'::float8, 'Infinity'::float8, '-Infinity'::float8)
		  AND s.longitude NOT IN ('NaN'::float8, 'Infinity'::float8, '-Infinity'::float8)`

	args := []any{}
	if bounds != nil {
		query += ` AND s.latitude BETWEEN $1 AND $2`
		if bounds.CrossesAntimeridian() {
			query += ` AND (s.longitude >= $3 OR s.longitude <= $4)`
		} else {
			query += ` AND s.longitude BETWEEN $3 AND $4`
		}
		args = append(args, bounds.South, bounds.North, bounds.West, bounds.East)
	}
	query += ` ORDER BY s.start_time DESC, s.id ASC`

	var rows []liveVendorRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	live := make([]domain.LiveVendor, 0, len(rows))
	for _, row := range rows {
		live = append(live, domain.LiveVendor{
			Session: row.LiveSession,
			Vendor: domain.MapVendor{
				ID:              row.VendorID,
				BusinessName:    row.BusinessName,
				Category:        row.Category,
				ProfileImageURL: row.ProfileImageURL,
				AverageRating:   row.AverageRating,
			},
		})
	}
	return live, nil
}

var _ ports.LiveSessionRepository = (*LiveSessionRepository)(nil)
