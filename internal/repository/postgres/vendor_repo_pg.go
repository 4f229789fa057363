package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

type VendorRepository struct {
	db *sqlx.DB
}

func NewVendorRepo(db *sqlx.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// vendorSelect reads vendor columns plus the live review aggregate from the
// given source, which is either the vendors table or a CTE over it.
func vendorSelect(source string) string {
	return `
		SELECT
			v.id, v.owner_id, v.business_name, v.description, v.category, v.phone,
			v.profile_image_url, v.status, v.is_active, v.created_at, v.updated_at,
			COALESCE(rs.average_rating, 0) AS average_rating,
			COALESCE(rs.total_reviews, 0) AS total_reviews
		FROM ` + source + ` v
		LEFT JOIN LATERAL (
			SELECT AVG(r.rating)::float8 AS average_rating, COUNT(*)::int AS total_reviews
			FROM vendor_review r
			WHERE r.vendor_id = v.id AND r.deleted_at IS NULL
		) rs ON true`
}

func (r *VendorRepository) Create(ctx context.Context, vendor *domain.Vendor) (*domain.Vendor, error) {
	query := `
		WITH created AS (
			INSERT INTO vendors (owner_id, business_name, description, category, phone, status, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)` + vendorSelect("created")

	var stored domain.Vendor
	err := r.db.GetContext(ctx, &stored, query,
		vendor.OwnerID,
		strings.TrimSpace(vendor.BusinessName),
		nullString(vendor.Description),
		nullString(vendor.Category),
		nullString(vendor.Phone),
		vendor.Status,
		vendor.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *VendorRepository) Update(ctx context.Context, id uuid.UUID, fields domain.VendorFields) (*domain.Vendor, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{id}
	idx := 2

	if fields.BusinessName != nil {
		setParts = append(setParts, fmt.Sprintf("business_name = $%d", idx))
		args = append(args, strings.TrimSpace(*fields.BusinessName))
		idx++
	}
	if fields.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", idx))
		args = append(args, nullString(fields.Description))
		idx++
	}
	if fields.Category != nil {
		setParts = append(setParts, fmt.Sprintf("category = $%d", idx))
		args = append(args, nullString(fields.Category))
		idx++
	}
	if fields.Phone != nil {
		setParts = append(setParts, fmt.Sprintf("phone = $%d", idx))
		args = append(args, nullString(fields.Phone))
	}

	query := fmt.Sprintf(`
		WITH updated AS (
			UPDATE vendors SET %s
			WHERE id = $1
			RETURNING *
		)`, strings.Join(setParts, ", ")) + vendorSelect("updated")

	var vendor domain.Vendor
	if err := r.db.GetContext(ctx, &vendor, query, args...); err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *VendorRepository) SetProfileImage(ctx context.Context, id uuid.UUID, url string) (*domain.Vendor, error) {
	return r.updateOne(ctx, "profile_image_url = $2", id, url)
}

func (r *VendorRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.VendorStatus) (*domain.Vendor, error) {
	return r.updateOne(ctx, "status = $2", id, status)
}

func (r *VendorRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Vendor, error) {
	return r.updateOne(ctx, "is_active = $2", id, active)
}

func (r *VendorRepository) updateOne(ctx context.Context, assignment string, id uuid.UUID, value any) (*domain.Vendor, error) {
	query := `
		WITH updated AS (
			UPDATE vendors SET ` + assignment + `, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)` + vendorSelect("updated")

	var vendor domain.Vendor
	if err := r.db.GetContext(ctx, &vendor, query, id, value); err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *VendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	query := vendorSelect("vendors") + ` WHERE v.id = $1`

	var vendor domain.Vendor
	if err := r.db.GetContext(ctx, &vendor, query, id); err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *VendorRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Vendor, error) {
	query := vendorSelect("vendors") + ` WHERE v.owner_id = $1`

	var vendor domain.Vendor
	if err := r.db.GetContext(ctx, &vendor, query, ownerID); err != nil {
		return nil, err
	}
	return &vendor, nil
}

type vendorSearchRow struct {
	domain.Vendor
	SessionID          *uuid.UUID `db:"session_id"`
	SessionLatitude    *float64   `db:"session_latitude"`
	SessionLongitude   *float64   `db:"session_longitude"`
	SessionAddress     *string    `db:"session_address"`
	SessionStartTime   *time.Time `db:"session_start_time"`
	SessionEndTime     *time.Time `db:"session_end_time"`
	SessionAutoEndTime *time.Time `db:"session_auto_end_time"`
	SessionDuration    *int       `db:"session_was_scheduled_duration"`
}

func (row vendorSearchRow) toItem() domain.VendorListItem {
	item := domain.VendorListItem{Vendor: row.Vendor}
	if row.SessionID != nil && row.SessionStartTime != nil {
		item.Session = &domain.LiveSession{
			ID:                   *row.SessionID,
			VendorID:             row.Vendor.ID,
			Latitude:             row.SessionLatitude,
			Longitude:            row.SessionLongitude,
			Address:              row.SessionAddress,
			StartTime:            *row.SessionStartTime,
			EndTime:              row.SessionEndTime,
			AutoEndTime:          row.SessionAutoEndTime,
			IsActive:             true,
			WasScheduledDuration: row.SessionDuration,
		}
	}
	return item
}

// Search lists publicly visible vendors with their active session, live
// vendors first.
func (r *VendorRepository) Search(ctx context.Context, filter domain.VendorSearchFilter) ([]domain.VendorListItem, error) {
	clauses := []string{"TRUE"}
	args := []any{}
	idx := 1

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		clauses = append(clauses, fmt.Sprintf("v.status = ANY($%d)", idx))
		args = append(args, pq.Array(statuses))
		idx++
	}
	if filter.RequireActive {
		clauses = append(clauses, "v.is_active")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		clauses = append(clauses, fmt.Sprintf(
			"(v.business_name ILIKE $%d OR v.description ILIKE $%d OR v.category ILIKE $%d)", idx, idx, idx))
		args = append(args, likePattern(q))
		idx++
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(v.category) = LOWER($%d)", idx))
		args = append(args, category)
		idx++
	}
	if filter.LiveOnly {
		clauses = append(clauses, "s.id IS NOT NULL")
	}

	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT
			v.id, v.owner_id, v.business_name, v.description, v.category, v.phone,
			v.profile_image_url, v.status, v.is_active, v.created_at, v.updated_at,
			COALESCE(rs.average_rating, 0) AS average_rating,
			COALESCE(rs.total_reviews, 0) AS total_reviews,
			s.id AS session_id,
			s.latitude AS session_latitude,
			s.longitude AS session_longitude,
			s.address AS session_address,
			s.start_time AS session_start_time,
			s.end_time AS session_end_time,
			s.auto_end_time AS session_auto_end_time,
			s.was_scheduled_duration AS session_was_scheduled_duration
		FROM vendors v
		LEFT JOIN vendor_live_sessions s ON s.vendor_id = v.id AND s.is_active
		LEFT JOIN LATERAL (
			SELECT AVG(r.rating)::float8 AS average_rating, COUNT(*)::int AS total_reviews
			FROM vendor_review r
			WHERE r.vendor_id = v.id AND r.deleted_at IS NULL
		) rs ON true
		WHERE %s
		ORDER BY (s.id IS NOT NULL) DESC, v.business_name ASC, v.id ASC
		LIMIT $%d OFFSET $%d
	`, strings.Join(clauses, " AND "), idx, idx+1)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.VendorListItem, 0)
	for rows.Next() {
		var row vendorSearchRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		items = append(items, row.toItem())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *VendorRepository) ListForAdmin(ctx context.Context, filter domain.VendorAdminFilter) ([]domain.Vendor, error) {
	query := vendorSelect("vendors")
	args := []any{}
	if filter.Status != nil {
		query += ` WHERE v.status = $1`
		args = append(args, *filter.Status)
	}
	query += fmt.Sprintf(` ORDER BY v.created_at DESC, v.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	vendors := make([]domain.Vendor, 0)
	if err := r.db.SelectContext(ctx, &vendors, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return vendors, nil
		}
		return nil, err
	}
	return vendors, nil
}

var _ ports.VendorRepository = (*VendorRepository)(nil)
