package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepo(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewSelect = `
	SELECT
		r.id,
		r.vendor_id,
		r.user_id,
		r.rating,
		r.comment,
		r.created_at,
		r.updated_at,
		r.deleted_at,
		r.deleted_by,
		u.full_name AS reviewer_name,
		u.email AS reviewer_email
	FROM vendor_review r
	JOIN user_account u ON u.id = r.user_id`

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	const query = `
		INSERT INTO vendor_review (vendor_id, user_id, rating, comment)
		VALUES (:vendor_id, :user_id, :rating, :comment)
		RETURNING id, vendor_id, user_id, rating, comment, created_at, updated_at, deleted_at, deleted_by
	`
	args := map[string]any{
		"vendor_id": review.VendorID,
		"user_id":   review.UserID,
		"rating":    review.Rating,
		"comment":   nullString(review.Comment),
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored domain.Review
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return &stored, nil
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, sql.ErrNoRows
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := reviewSelect + ` WHERE r.id = $1`

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter domain.ReviewListFilter) ([]domain.Review, error) {
	clauses := []string{"r.vendor_id = $1", "r.deleted_at IS NULL"}
	args := []any{vendorID}
	idx := 2

	if filter.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("r.rating >= $%d", idx))
		args = append(args, *filter.MinRating)
		idx++
	}
	if filter.MaxRating != nil {
		clauses = append(clauses, fmt.Sprintf("r.rating <= $%d", idx))
		args = append(args, *filter.MaxRating)
		idx++
	}

	sortCol := "r.created_at"
	if filter.SortField == domain.ReviewSortRating {
		sortCol = "r.rating"
	}
	order := "DESC"
	if filter.SortOrder == domain.SortOrderAsc {
		order = "ASC"
	}

	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY %s %s, r.id DESC
		LIMIT $%d OFFSET $%d
	`, reviewSelect, strings.Join(clauses, " AND "), sortCol, order, idx, idx+1)

	reviews := make([]domain.Review, 0)
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) AggregateByVendor(ctx context.Context, vendorID uuid.UUID) (*domain.ReviewAggregate, error) {
	const query = `
		SELECT
			COUNT(*)::int AS total_reviews,
			COALESCE(AVG(r.rating)::float8, 0) AS average_rating,
			COUNT(*) FILTER (WHERE r.rating = 1)::int AS rating_1,
			COUNT(*) FILTER (WHERE r.rating = 2)::int AS rating_2,
			COUNT(*) FILTER (WHERE r.rating = 3)::int AS rating_3,
			COUNT(*) FILTER (WHERE r.rating = 4)::int AS rating_4,
			COUNT(*) FILTER (WHERE r.rating = 5)::int AS rating_5
		FROM vendor_review r
		WHERE r.vendor_id = $1 AND r.deleted_at IS NULL
	`

	var row struct {
		Total   int     `db:"total_reviews"`
		Average float64 `db:"average_rating"`
		Rating1 int     `db:"rating_1"`
		Rating2 int     `db:"rating_2"`
		Rating3 int     `db:"rating_3"`
		Rating4 int     `db:"rating_4"`
		Rating5 int     `db:"rating_5"`
	}
	if err := r.db.GetContext(ctx, &row, query, vendorID); err != nil {
		return nil, err
	}

	return &domain.ReviewAggregate{
		VendorID:      vendorID,
		AverageRating: row.Average,
		TotalReviews:  row.Total,
		RatingCounts: map[int]int{
			1: row.Rating1,
			2: row.Rating2,
			3: row.Rating3,
			4: row.Rating4,
			5: row.Rating5,
		},
	}, nil
}

func (r *ReviewRepository) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	const query = `
		UPDATE vendor_review
		SET deleted_at = NOW(), deleted_by = $2
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, deletedBy)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)
