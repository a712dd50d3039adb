package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PendingOrder is a purchase order that has no tracking number yet.
type PendingOrder struct {
	ID                  int64       `json:"id"`
	PurchaseOrderNumber string      `json:"purchase_order_number"`
	ExternalOrderID     string      `json:"sellercloud_order_id,omitempty"`
	PartnerCode         string      `json:"dropshipper_code"`
	PartnerFolder       string      `json:"ftp_folder,omitempty"`
	ShipMethod          string      `json:"ship_method"`
	Items               []OrderItem `json:"items"`
	InvoiceEmail        string      `json:"invoice_email,omitempty"`
	EmailNotifications  bool        `json:"email_notifications"`
	IsCancelled         bool        `json:"is_cancelled"`
	IsBackorder         bool        `json:"is_backorder"`
	DateAdded           time.Time   `json:"date_added"`
}

type OrderItem struct {
	SKU          SKU                 `json:"sku"`
	Quantity     int                 `json:"quantity"`
	Price        decimal.NullDecimal `json:"price"`
	ShippingCost decimal.NullDecimal `json:"shipping_cost"`
}

// SKU keeps the raw value next to its slash-separated components, e.g.
// "A0012/B0012" for a kit shipped as two parts.
type SKU struct {
	Raw   string   `json:"raw"`
	Parts []string `json:"parts"`
}

func ParseSKU(raw string) SKU {
	parts := []string{}
	for _, p := range strings.Split(raw, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return SKU{Raw: raw, Parts: parts}
}

func (s SKU) String() string { return s.Raw }

// EnrichedOrder is a pending order with the SellerCloud fields attached.
// It only lives for the duration of one run.
type EnrichedOrder struct {
	PendingOrder
	Status         Status `json:"sc_status"`
	RawStatus      any    `json:"sc_status_raw"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	TrackingDate   string `json:"tracking_date,omitempty"`
}

func (o EnrichedOrder) HasTracking() bool {
	return strings.TrimSpace(o.TrackingNumber) != ""
}

// Disposition classifies the order against the current status and tracking.
func (o EnrichedOrder) Disposition() Disposition {
	return Dispose(o.Status, o.HasTracking())
}
