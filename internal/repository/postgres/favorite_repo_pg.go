package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

type FavoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add returns sql.ErrNoRows when the vendor is already a favorite.
func (r *FavoriteRepository) Add(ctx context.Context, userID, vendorID uuid.UUID) (*domain.Favorite, error) {
	const query = `
		INSERT INTO favorite_vendor (user_id, vendor_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, vendor_id) DO NOTHING
		RETURNING id, user_id, vendor_id, created_at
	`

	var favorite domain.Favorite
	if err := r.db.GetContext(ctx, &favorite, query, userID, vendorID); err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, vendorID uuid.UUID) error {
	const query = `
		DELETE FROM favorite_vendor
		WHERE user_id = $1 AND vendor_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, userID, vendorID)
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

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.FavoriteListItem, error) {
	const query = `
		SELECT
			f.id,
			f.user_id,
			f.vendor_id,
			f.created_at,
			v.business_name,
			v.category,
			v.profile_image_url,
			EXISTS (
				SELECT 1 FROM vendor_live_sessions s
				WHERE s.vendor_id = v.id AND s.is_active
			) AS is_live
		FROM favorite_vendor f
		JOIN vendors v ON v.id = f.vendor_id
		WHERE f.user_id = $1
		ORDER BY is_live DESC, f.created_at DESC, f.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryxContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.FavoriteListItem, 0)
	for rows.Next() {
		var item domain.FavoriteListItem
		if err := rows.StructScan(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *FavoriteRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM favorite_vendor WHERE user_id = $1`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FavoriteRepository) CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM favorite_vendor WHERE vendor_id = $1`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, vendorID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FavoriteRepository) ListUserIDsByVendor(ctx context.Context, vendorID uuid.UUID) ([]uuid.UUID, error) {
	const query = `SELECT user_id FROM favorite_vendor WHERE vendor_id = $1 ORDER BY created_at`
	ids := make([]uuid.UUID, 0)
	if err := r.db.SelectContext(ctx, &ids, query, vendorID); err != nil {
		return nil, err
	}
	return ids, nil
}

var _ ports.FavoriteRepository = (*FavoriteRepository)(nil)
