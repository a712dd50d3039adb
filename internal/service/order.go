package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dropship-tracking/internal/model"
)

var ErrOrderNotFound = errors.New("purchase order not found")

// OrderService is the system of record for dropship purchase orders.
type OrderService struct {
	db              *sql.DB
	excludedPartner string
}

func NewOrderService(db *sql.DB, excludedPartner string) *OrderService {
	return &OrderService{db: db, excludedPartner: excludedPartner}
}

const untrackedOrdersSQL = `
	SELECT
		po.id,
		po.purchase_order_number,
		COALESCE(po.sellercloud_order_id, ''),
		d.code,
		COALESCE(d.ship_method, ''),
		COALESCE(d.ftp_folder, ''),
		d.email_notifications,
		COALESCE(d.invoice_email, ''),
		po.is_cancelled,
		po.is_backorder,
		po.date_added,
		poi.sku,
		poi.quantity,
		poi.price,
		poi.shipping_cost
	FROM purchase_orders po
	JOIN dropshippers d ON po.dropshipper_id = d.id
	JOIN purchase_order_items poi ON poi.purchase_order_id = po.id
	WHERE po.is_cancelled = FALSE
		AND po.in_sellercloud = TRUE
		AND (po.tracking_number IS NULL OR po.tracking_number = '')
		AND d.code <> $1
		AND NOT EXISTS (
			SELECT 1 FROM purchase_order_errors poe
			WHERE poe.purchase_order_id = po.id AND poe.resolved = FALSE
		)
	ORDER BY po.id, poi.id
`

// GetUntracked returns the purchase orders still waiting for tracking, one
// entry per order with its items attached.
func (s *OrderService) GetUntracked(ctx context.Context) ([]model.PendingOrder, error) {
	rows, err := s.db.QueryContext(ctx, untrackedOrdersSQL, s.excludedPartner)
	if err != nil {
		return nil, fmt.Errorf("query untracked orders: %w", err)
	}
	defer rows.Close()

	var orders []model.PendingOrder
	index := make(map[int64]int)
	for rows.Next() {
		var (
			o        model.PendingOrder
			sku      string
			qty      int
			price    decimal.NullDecimal
			shipping decimal.NullDecimal
		)
		if err := rows.Scan(
			&o.ID, &o.PurchaseOrderNumber, &o.ExternalOrderID, &o.PartnerCode,
			&o.ShipMethod, &o.PartnerFolder, &o.EmailNotifications, &o.InvoiceEmail,
			&o.IsCancelled, &o.IsBackorder, &o.DateAdded,
			&sku, &qty, &price, &shipping,
		); err != nil {
			return nil, fmt.Errorf("scan untracked order: %w", err)
		}

		i, ok := index[o.ID]
		if !ok {
			i = len(orders)
			index[o.ID] = i
			orders = append(orders, o)
		}
		orders[i].Items = append(orders[i].Items, model.OrderItem{
			SKU:          model.ParseSKU(sku),
			Quantity:     qty,
			Price:        price,
			ShippingCost: shipping,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}

// SaveTracking writes tracking back for every order carrying a tracking
// number. Rows that already have tracking are left alone, so a second call
// with the same batch updates nothing. All updates share one transaction.
func (s *OrderService) SaveTracking(ctx context.Context, byPartner map[string][]model.EnrichedOrder) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE purchase_orders
		SET tracking_number = $1, tracking_date = $2
		WHERE purchase_order_number = $3
			AND (tracking_number IS NULL OR tracking_number = '')
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare tracking update: %w", err)
	}
	defer stmt.Close()

	updated := 0
	for _, orders := range byPartner {
		for _, o := range orders {
			if !o.HasTracking() || o.PurchaseOrderNumber == "" {
				continue
			}
			res, err := stmt.ExecContext(ctx, o.TrackingNumber, trackingDate(o.TrackingDate), o.PurchaseOrderNumber)
			if err != nil {
				return 0, fmt.Errorf("update tracking for %s: %w", o.PurchaseOrderNumber, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return 0, fmt.Errorf("rows affected for %s: %w", o.PurchaseOrderNumber, err)
			}
			updated += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// trackingDate only hands well-formed calendar dates to the DATE column.
func trackingDate(s string) sql.NullString {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func (s *OrderService) MarkCancelled(ctx context.Context, poNumber string) error {
	return s.setFlag(ctx, `UPDATE purchase_orders SET is_cancelled = TRUE WHERE purchase_order_number = $1`, poNumber)
}

func (s *OrderService) MarkOnHold(ctx context.Context, poNumber string) error {
	return s.setFlag(ctx, `UPDATE purchase_orders SET is_backorder = TRUE WHERE purchase_order_number = $1`, poNumber)
}

func (s *OrderService) setFlag(ctx context.Context, query, poNumber string) error {
	res, err := s.db.ExecContext(ctx, query, poNumber)
	if err != nil {
		return fmt.Errorf("update order %s: %w", poNumber, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", poNumber, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, poNumber)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *OrderService) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
