package reconcile

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SellerCloud order payloads do not have a stable layout, so every field is
// read through an ordered list of candidate locations.

var statusPaths = [][]string{
	{"Statuses", "OrderStatus"},
	{"Statuses", "Status"},
	{"Status"},
	{"OrderStatus"},
}

var trackingDatePaths = [][]string{
	{"ShippingDetails", "ShipDate"},
	{"ShipDate"},
	{"OrderDate"},
	{"DateCreated"},
}

var (
	packageTrackingKeys  = []string{"TrackingNumber", "trackingNumber", "Tracking", "tracking"}
	shipmentTrackingKeys = []string{"TrackingNumber", "trackingNumber", "Tracking"}
)

var trackingAttempts = []func(map[string]any) string{
	func(doc map[string]any) string {
		return firstString(firstObject(doc, "OrderPackages", "Packages"), packageTrackingKeys...)
	},
	func(doc map[string]any) string {
		return firstString(firstObject(doc, "Shipments", "OrderShipments"), shipmentTrackingKeys...)
	},
	func(doc map[string]any) string {
		shipment := firstObject(doc, "Shipments", "OrderShipments")
		return firstString(firstObject(shipment, "Packages"), shipmentTrackingKeys...)
	},
}

// extractStatus returns the first non-nil raw status.
func extractStatus(doc map[string]any) any {
	for _, p := range statusPaths {
		if v := lookup(doc, p...); v != nil {
			return v
		}
	}
	return nil
}

func extractTracking(doc map[string]any) string {
	for _, attempt := range trackingAttempts {
		if tn := attempt(doc); tn != "" {
			return tn
		}
	}
	return ""
}

// extractTrackingDate returns the first non-empty date value, unnormalized.
func extractTrackingDate(doc map[string]any) any {
	for _, p := range trackingDatePaths {
		v := lookup(doc, p...)
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

// lookup walks nested objects along path and returns nil on any miss.
func lookup(doc map[string]any, path ...string) any {
	var cur any = doc
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

// firstObject takes the first non-empty list among keys and returns its first
// element when that element is an object.
func firstObject(doc map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		list, ok := doc[k].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		obj, _ := list[0].(map[string]any)
		return obj
	}
	return nil
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringValue(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
