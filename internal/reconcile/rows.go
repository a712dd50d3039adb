package reconcile

import (
	"dropship-tracking/internal/manifest"
	"dropship-tracking/internal/model"
)

// RowBuilder turns an enriched order into manifest rows.
type RowBuilder struct {
	methods manifest.ShipMethods
}

func NewRowBuilder(methods manifest.ShipMethods) *RowBuilder {
	if methods == nil {
		methods = manifest.DefaultShipMethods()
	}
	return &RowBuilder{methods: methods}
}

// Build emits one row per item. An order without tracking yields no rows and
// is recorded in res as missing tracking.
func (b *RowBuilder) Build(order model.EnrichedOrder, res *model.Result) []model.TrackingRow {
	if !order.HasTracking() {
		res.AddMissingTracking(order.PurchaseOrderNumber)
		return nil
	}

	carrier := b.methods.Lookup(order.ShipMethod)
	shipDate := model.NormalizeShipDate(order.TrackingDate)

	rows := make([]model.TrackingRow, 0, len(order.Items))
	for _, it := range order.Items {
		rows = append(rows, model.TrackingRow{
			PONumber:       order.PurchaseOrderNumber,
			SKU:            it.SKU.Raw,
			Quantity:       it.Quantity,
			CarrierName:    carrier.Name,
			ShipMethod:     model.DisplayShipMethod,
			ShipMethodCode: carrier.Code,
			ShipDate:       shipDate,
			TrackingNumber: order.TrackingNumber,
		})
	}
	return rows
}
