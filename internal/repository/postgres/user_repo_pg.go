package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

const userColumns = `id, email, full_name, image_url, password_hash, password_salt, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateEmailUser(ctx context.Context, email string, fullName *string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	query := `
		INSERT INTO user_account (email, full_name, password_hash, password_salt)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email, nullString(fullName), passwordHash, passwordSalt); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpsertGoogleUser(ctx context.Context, email string, fullName *string, imageURL *string) (*domain.User, error) {
	query := `
		INSERT INTO user_account (email, full_name, image_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (LOWER(email)) DO UPDATE
		SET full_name = COALESCE(user_account.full_name, EXCLUDED.full_name),
		    image_url = COALESCE(EXCLUDED.image_url, user_account.image_url),
		    updated_at = NOW()
		RETURNING ` + userColumns

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email, nullString(fullName), nullString(imageURL)); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_account WHERE LOWER(email) = LOWER($1)`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_account WHERE id = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
