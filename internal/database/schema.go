package database

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS dropshippers (
    id SERIAL PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    sellercloud_customer_id TEXT,
    ship_method TEXT NOT NULL DEFAULT '',
    ftp_folder TEXT,
    email_notifications BOOLEAN NOT NULL DEFAULT FALSE,
    invoice_email TEXT
);

CREATE TABLE IF NOT EXISTS purchase_orders (
    id BIGSERIAL PRIMARY KEY,
    dropshipper_id INT NOT NULL REFERENCES dropshippers(id),
    purchase_order_number TEXT NOT NULL UNIQUE,
    sellercloud_order_id TEXT,
    in_sellercloud BOOLEAN NOT NULL DEFAULT FALSE,
    is_cancelled BOOLEAN NOT NULL DEFAULT FALSE,
    is_backorder BOOLEAN NOT NULL DEFAULT FALSE,
    tracking_number TEXT,
    tracking_date DATE,
    date_added TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS purchase_order_items (
    id BIGSERIAL PRIMARY KEY,
    purchase_order_id BIGINT NOT NULL REFERENCES purchase_orders(id) ON DELETE CASCADE,
    sku TEXT NOT NULL,
    quantity INT NOT NULL CHECK (quantity > 0),
    price NUMERIC(10,2),
    shipping_cost NUMERIC(10,2)
);

CREATE TABLE IF NOT EXISTS purchase_order_errors (
    id BIGSERIAL PRIMARY KEY,
    purchase_order_id BIGINT NOT NULL REFERENCES purchase_orders(id) ON DELETE CASCADE,
    message TEXT NOT NULL,
    resolved BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS process_runs (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    status TEXT NOT NULL,
    message TEXT,
    started_at TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_purchase_orders_untracked
    ON purchase_orders(dropshipper_id) WHERE tracking_number IS NULL;
CREATE INDEX IF NOT EXISTS idx_purchase_order_items_po ON purchase_order_items(purchase_order_id);
CREATE INDEX IF NOT EXISTS idx_purchase_order_errors_open
    ON purchase_order_errors(purchase_order_id) WHERE resolved = FALSE;
`

func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}
