package service

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropship-tracking/internal/database"
	"dropship-tracking/internal/model"
)

// openTestDB connects to TEST_DATABASE_URI, skipping when it is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	uri := os.Getenv("TEST_DATABASE_URI")
	if uri == "" {
		t.Skip("TEST_DATABASE_URI not set")
	}
	ctx := context.Background()
	db, err := database.NewDB(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	require.NoError(t, database.InitSchema(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE purchase_order_errors, purchase_order_items, purchase_orders, dropshippers, process_runs RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

func seedOrders(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO dropshippers (code, ship_method, ftp_folder, email_notifications, invoice_email) VALUES
			('AAG', 'UPS Ground', 'aag', TRUE, 'orders@aag.example'),
			('ABS', 'UPS Ground', NULL, FALSE, NULL);
		INSERT INTO purchase_orders (dropshipper_id, purchase_order_number, sellercloud_order_id, in_sellercloud) VALUES
			(1, 'PO-1', 'SC1', TRUE),
			(1, 'PO-2', NULL, TRUE),
			(1, 'PO-3', 'SC3', TRUE),
			(2, 'PO-4', 'SC4', TRUE),
			(1, 'PO-5', 'SC5', FALSE);
		INSERT INTO purchase_order_items (purchase_order_id, sku, quantity, price) VALUES
			(1, 'A0012/B0012', 2, 10.50),
			(1, 'C0012', 1, NULL),
			(2, 'D0012', 3, 4.00),
			(3, 'E0012', 1, 1.00),
			(4, 'F0012', 1, 1.00),
			(5, 'G0012', 1, 1.00);
		INSERT INTO purchase_order_errors (purchase_order_id, message) VALUES (3, 'address rejected');
	`)
	require.NoError(t, err)
}

func TestOrderService_GetUntracked(t *testing.T) {
	db := openTestDB(t)
	seedOrders(t, db)
	svc := NewOrderService(db, "ABS")

	orders, err := svc.GetUntracked(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	first := orders[0]
	assert.Equal(t, "PO-1", first.PurchaseOrderNumber)
	assert.Equal(t, "SC1", first.ExternalOrderID)
	assert.Equal(t, "AAG", first.PartnerCode)
	assert.Equal(t, "aag", first.PartnerFolder)
	assert.True(t, first.EmailNotifications)
	require.Len(t, first.Items, 2)
	assert.Equal(t, []string{"A0012", "B0012"}, first.Items[0].SKU.Parts)
	assert.Equal(t, "10.5", first.Items[0].Price.Decimal.String())
	assert.False(t, first.Items[1].Price.Valid)

	assert.Equal(t, "PO-2", orders[1].PurchaseOrderNumber)
	assert.Empty(t, orders[1].ExternalOrderID)
}

func TestOrderService_SaveTrackingIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	seedOrders(t, db)
	svc := NewOrderService(db, "ABS")
	ctx := context.Background()

	batch := map[string][]model.EnrichedOrder{
		"AAG": {
			{PendingOrder: model.PendingOrder{PurchaseOrderNumber: "PO-1"}, TrackingNumber: "1Z999", TrackingDate: "2024-05-03"},
			{PendingOrder: model.PendingOrder{PurchaseOrderNumber: "PO-2"}, TrackingNumber: "1Z111", TrackingDate: "05-03-2024"},
			{PendingOrder: model.PendingOrder{PurchaseOrderNumber: "PO-3"}},
		},
	}

	n, err := svc.SaveTracking(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.SaveTracking(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var tracking string
	var date sql.NullTime
	require.NoError(t, db.QueryRow(`SELECT tracking_number, tracking_date FROM purchase_orders WHERE purchase_order_number = 'PO-2'`).Scan(&tracking, &date))
	assert.Equal(t, "1Z111", tracking)
	assert.False(t, date.Valid)
}

func TestOrderService_MarkFlags(t *testing.T) {
	db := openTestDB(t)
	seedOrders(t, db)
	svc := NewOrderService(db, "ABS")
	ctx := context.Background()

	require.NoError(t, svc.MarkCancelled(ctx, "PO-1"))
	require.NoError(t, svc.MarkOnHold(ctx, "PO-2"))
	require.ErrorIs(t, svc.MarkOnHold(ctx, "PO-404"), ErrOrderNotFound)

	orders, err := svc.GetUntracked(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "PO-2", orders[0].PurchaseOrderNumber)
	assert.True(t, orders[0].IsBackorder)
}

func TestRunLogService(t *testing.T) {
	db := openTestDB(t)
	svc := NewRunLogService(db)
	ctx := context.Background()
	id := "6f1c0d1e-8f7a-4a4b-9d55-0e0b0d6b7a11"

	require.NoError(t, svc.Start(ctx, id, "tracking"))
	require.NoError(t, svc.Finish(ctx, id, RunStatusFailure, "boom"))

	var status, message string
	require.NoError(t, db.QueryRow(`SELECT status, message FROM process_runs WHERE id = $1`, id).Scan(&status, &message))
	assert.Equal(t, RunStatusFailure, status)
	assert.Equal(t, "boom", message)
}
