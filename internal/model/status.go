package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Status is the normalized SellerCloud order status. The zero value means
// no negative signal was found.
type Status string

const (
	StatusUnknown   Status = ""
	StatusCancelled Status = "Cancelled"
	StatusOnHold    Status = "OnHold"
	StatusProblem   Status = "ProblemOrder"
)

var statusCodes = map[int64]Status{
	-1:  StatusCancelled,
	100: StatusProblem,
	200: StatusOnHold,
}

// ResolveStatus maps a raw SellerCloud status code to a Status. Missing or
// unrecognised codes resolve to StatusUnknown.
func ResolveStatus(raw any) Status {
	code, ok := statusCode(raw)
	if !ok {
		return StatusUnknown
	}
	return statusCodes[code]
}

func statusCode(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return integral(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

type Disposition string

const (
	DispositionCancelled   Disposition = "cancelled"
	DispositionOnHold      Disposition = "on_hold"
	DispositionProblem     Disposition = "problem"
	DispositionProcessable Disposition = "processable"
)

// Dispose applies the status priority. A cancelled order that already
// shipped is still manifested.
func Dispose(status Status, hasTracking bool) Disposition {
	switch {
	case status == StatusCancelled && hasTracking:
		return DispositionProcessable
	case status == StatusProblem:
		return DispositionProblem
	case status == StatusOnHold:
		return DispositionOnHold
	case status == StatusCancelled:
		return DispositionCancelled
	default:
		return DispositionProcessable
	}
}
