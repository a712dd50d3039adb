package model

import (
	"strings"
	"time"
)

// DisplayShipMethod is what partners see in the ship method column,
// whatever the carrier.
const DisplayShipMethod = "Ground"

// TrackingRow is one line of a partner manifest.
type TrackingRow struct {
	PONumber       string `json:"po_number"`
	SKU            string `json:"sku"`
	Quantity       int    `json:"quantity"`
	CarrierName    string `json:"carrier_name"`
	ShipMethod     string `json:"ship_method"`
	ShipMethodCode string `json:"ship_method_code"`
	ShipDate       string `json:"ship_date"`
	TrackingNumber string `json:"tracking_number"`
}

// NormalizeShipDate reduces a date value to its YYYY-MM-DD prefix. Values it
// cannot handle become "".
func NormalizeShipDate(v any) string {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return ""
		}
		return d.Format(time.DateOnly)
	case *time.Time:
		if d == nil {
			return ""
		}
		return NormalizeShipDate(*d)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(d), "/", "-")
		if r := []rune(s); len(r) > 10 {
			s = string(r[:10])
		}
		return strings.TrimSpace(s)
	default:
		return ""
	}
}
