package manifest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"dropship-tracking/internal/model"
)

// Columns is the fixed manifest header.
var Columns = []string{
	"po_number",
	"sku",
	"quantity",
	"carrier_name",
	"ship_method",
	"ship_method_code",
	"ship_date",
	"tracking_number",
}

// EncodeCSV serializes rows with a header line. No rows means no content.
func EncodeCSV(rows []model.TrackingRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.PONumber,
			r.SKU,
			strconv.Itoa(r.Quantity),
			r.CarrierName,
			r.ShipMethod,
			r.ShipMethodCode,
			r.ShipDate,
			r.TrackingNumber,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %s: %w", r.PONumber, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
