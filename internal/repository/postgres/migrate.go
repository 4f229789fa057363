package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS user_account (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    email text NOT NULL,
    full_name text,
    image_url text,
    password_hash bytea,
    password_salt bytea,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS user_account_email_lower_unique
ON user_account (LOWER(email));

CREATE TABLE IF NOT EXISTS role (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    role_name text NOT NULL UNIQUE,
    description text,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_role (
    role_id uuid NOT NULL REFERENCES role(id) ON DELETE CASCADE,
    user_id uuid NOT NULL REFERENCES user_account(id) ON DELETE CASCADE,
    PRIMARY KEY (role_id, user_id)
);

CREATE TABLE IF NOT EXISTS sessions (
    id bigserial PRIMARY KEY,
    user_id uuid NOT NULL REFERENCES user_account(id) ON DELETE CASCADE,
    token text NOT NULL UNIQUE,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    expires_at timestamptz NOT NULL,
    is_active boolean NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS vendors (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    owner_id uuid NOT NULL UNIQUE REFERENCES user_account(id) ON DELETE CASCADE,
    business_name text NOT NULL,
    description text,
    category text,
    phone text,
    profile_image_url text,
    status text NOT NULL DEFAULT 'pending',
    is_active boolean NOT NULL DEFAULT true,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS vendors_status_idx ON vendors (status, is_active);

CREATE TABLE IF NOT EXISTS vendor_live_sessions (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    vendor_id uuid NOT NULL REFERENCES vendors(id) ON DELETE CASCADE,
    latitude double precision,
    longitude double precision,
    address text,
    start_time timestamptz NOT NULL,
    end_time timestamptz,
    auto_end_time timestamptz,
    is_active boolean NOT NULL DEFAULT true,
    ended_by text CHECK (ended_by IN ('vendor', 'timer', 'admin')),
    estimated_customers integer,
    was_scheduled_duration integer,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS vendor_live_sessions_one_active
ON vendor_live_sessions (vendor_id) WHERE is_active;

CREATE INDEX IF NOT EXISTS vendor_live_sessions_auto_end_idx
ON vendor_live_sessions (auto_end_time) WHERE is_active AND auto_end_time IS NOT NULL;

CREATE INDEX IF NOT EXISTS vendor_live_sessions_vendor_start_idx
ON vendor_live_sessions (vendor_id, start_time DESC);

CREATE TABLE IF NOT EXISTS platform_settings (
    id smallint PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    require_vendor_approval boolean NOT NULL DEFAULT true,
    allow_auto_vendor_approval boolean NOT NULL DEFAULT false,
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    updated_by uuid REFERENCES user_account(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS vendor_review (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    vendor_id uuid NOT NULL REFERENCES vendors(id) ON DELETE CASCADE,
    user_id uuid NOT NULL REFERENCES user_account(id) ON DELETE CASCADE,
    rating smallint NOT NULL CHECK (rating BETWEEN 1 AND 5),
    comment text,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    deleted_at timestamptz,
    deleted_by uuid
);

CREATE UNIQUE INDEX IF NOT EXISTS vendor_review_one_active
ON vendor_review (user_id, vendor_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS favorite_vendor (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id uuid NOT NULL REFERENCES user_account(id) ON DELETE CASCADE,
    vendor_id uuid NOT NULL REFERENCES vendors(id) ON DELETE CASCADE,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, vendor_id)
);

CREATE TABLE IF NOT EXISTS notification (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id uuid NOT NULL REFERENCES user_account(id) ON DELETE CASCADE,
    kind text NOT NULL,
    title text NOT NULL,
    body text,
    vendor_id uuid REFERENCES vendors(id) ON DELETE SET NULL,
    read_at timestamptz,
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS notification_user_created_idx
ON notification (user_id, created_at DESC);
`

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
