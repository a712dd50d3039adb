package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Status
	}{
		{"cancelled int", -1, StatusCancelled},
		{"on hold float", float64(200), StatusOnHold},
		{"problem json number", json.Number("100"), StatusProblem},
		{"json number float form", json.Number("-1.0"), StatusCancelled},
		{"json number exponent", json.Number("1e2"), StatusProblem},
		{"json number fractional", json.Number("200.5"), StatusUnknown},
		{"numeric string", " 200 ", StatusOnHold},
		{"unknown code", 3, StatusUnknown},
		{"nil", nil, StatusUnknown},
		{"fractional", 100.5, StatusUnknown},
		{"text", "Cancelled", StatusUnknown},
		{"bool", true, StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.raw))
		})
	}
}

func TestDispose(t *testing.T) {
	tests := []struct {
		status      Status
		hasTracking bool
		want        Disposition
	}{
		{StatusCancelled, true, DispositionProcessable},
		{StatusCancelled, false, DispositionCancelled},
		{StatusProblem, true, DispositionProblem},
		{StatusProblem, false, DispositionProblem},
		{StatusOnHold, true, DispositionOnHold},
		{StatusOnHold, false, DispositionOnHold},
		{StatusUnknown, true, DispositionProcessable},
		{StatusUnknown, false, DispositionProcessable},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Dispose(tt.status, tt.hasTracking), "status=%q tracking=%v", tt.status, tt.hasTracking)
	}
}

func TestEnrichedOrderDispositionIgnoresBlankTracking(t *testing.T) {
	o := EnrichedOrder{Status: StatusCancelled, TrackingNumber: "   "}
	assert.False(t, o.HasTracking())
	assert.Equal(t, DispositionCancelled, o.Disposition())
}
