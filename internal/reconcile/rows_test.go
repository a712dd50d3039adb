package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropship-tracking/internal/manifest"
	"dropship-tracking/internal/model"
)

func TestRowBuilder_CancelledButShippedScenario(t *testing.T) {
	order := model.EnrichedOrder{
		PendingOrder:   pending("PO-1", "SC1", "AAG"),
		Status:         model.StatusCancelled,
		TrackingNumber: "1Z999",
		TrackingDate:   "2024-05-03",
	}
	require.Equal(t, model.DispositionProcessable, order.Disposition())

	res := model.NewResult()
	rows := NewRowBuilder(nil).Build(order, res)

	require.Len(t, rows, 1)
	assert.Equal(t, model.TrackingRow{
		PONumber:       "PO-1",
		SKU:            "A1",
		Quantity:       2,
		CarrierName:    "UPS",
		ShipMethod:     "Ground",
		ShipMethodCode: "UPS",
		ShipDate:       "2024-05-03",
		TrackingNumber: "1Z999",
	}, rows[0])
	assert.Empty(t, res.MissingTracking)
}

func TestRowBuilder_OneRowPerItem(t *testing.T) {
	order := model.EnrichedOrder{
		PendingOrder: pending("PO-2", "SC2", "AAG",
			model.OrderItem{SKU: model.ParseSKU("A0012/B0012"), Quantity: 1},
			model.OrderItem{SKU: model.ParseSKU("C0012"), Quantity: 4},
			model.OrderItem{SKU: model.ParseSKU("D0012"), Quantity: 2},
		),
		TrackingNumber: "TN-2",
	}
	order.ShipMethod = "Carrier Pigeon"

	rows := NewRowBuilder(manifest.DefaultShipMethods()).Build(order, model.NewResult())
	require.Len(t, rows, len(order.Items))
	for i, r := range rows {
		assert.Equal(t, order.Items[i].SKU.Raw, r.SKU)
		assert.Equal(t, order.Items[i].Quantity, r.Quantity)
		assert.Equal(t, "TN-2", r.TrackingNumber)
		assert.Equal(t, "Ground", r.ShipMethod)
		assert.Empty(t, r.CarrierName)
		assert.Empty(t, r.ShipMethodCode)
		assert.Empty(t, r.ShipDate)
	}
}

func TestRowBuilder_MissingTracking(t *testing.T) {
	order := model.EnrichedOrder{PendingOrder: pending("PO-3", "SC3", "AAG")}
	res := model.NewResult()

	rows := NewRowBuilder(nil).Build(order, res)
	assert.Empty(t, rows)
	assert.Equal(t, []string{"PO-3"}, res.MissingTracking)
	assert.Equal(t, []string{"PO-3"}, res.Errors[model.ErrMissingTracking])
}
