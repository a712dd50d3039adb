package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"dropship-tracking/internal/manifest"
	"dropship-tracking/internal/model"
)

type TrackingWriter interface {
	SaveTracking(ctx context.Context, byPartner map[string][]model.EnrichedOrder) (int, error)
}

// Uploader puts a finished manifest on the partner file drop.
type Uploader interface {
	Upload(ctx context.Context, content []byte, remotePath string) error
}

// Processor writes one manifest per partner and persists the tracking of
// the partners that were delivered.
type Processor struct {
	store    TrackingWriter
	uploader Uploader
	rows     *RowBuilder
	layout   manifest.Layout
}

func NewProcessor(store TrackingWriter, uploader Uploader, rows *RowBuilder, layout manifest.Layout) *Processor {
	return &Processor{store: store, uploader: uploader, rows: rows, layout: layout}
}

// Run handles partners in code order. A partner whose file cannot be built
// or uploaded is reported and skipped; its orders are not persisted so the
// next run picks them up again. A persistence error is returned as is.
func (p *Processor) Run(ctx context.Context, byPartner map[string][]model.EnrichedOrder, res *model.Result) (*model.Result, error) {
	if res == nil {
		res = model.NewResult()
	}

	codes := make([]string, 0, len(byPartner))
	for code := range byPartner {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	delivered := make(map[string][]model.EnrichedOrder, len(byPartner))
	for _, code := range codes {
		orders := byPartner[code]
		if len(orders) == 0 {
			slog.Info("no tracked orders for partner", "partner", code)
			continue
		}

		shipped, ok := p.processPartner(ctx, code, orders, res)
		if ok {
			delivered[code] = shipped
		}
	}

	if len(delivered) == 0 {
		return res, nil
	}

	n, err := p.store.SaveTracking(ctx, delivered)
	if err != nil {
		return res, fmt.Errorf("save tracking: %w", err)
	}
	slog.Info("tracking saved", "rows_updated", n)
	return res, nil
}

func (p *Processor) processPartner(ctx context.Context, code string, orders []model.EnrichedOrder, res *model.Result) ([]model.EnrichedOrder, bool) {
	var (
		rows    []model.TrackingRow
		shipped []model.EnrichedOrder
	)
	for _, o := range orders {
		built := p.rows.Build(o, res)
		if len(built) == 0 {
			continue
		}
		rows = append(rows, built...)
		shipped = append(shipped, o)
	}
	if len(rows) == 0 {
		slog.Info("no orders were tracked for partner", "partner", code)
		return nil, false
	}

	remotePath := p.layout.RemotePath(code, orders[0].PartnerFolder)
	content, err := manifest.EncodeCSV(rows)
	if err == nil {
		err = p.uploader.Upload(ctx, content, remotePath)
	}
	if err != nil {
		slog.Error("failed to deliver partner manifest", "partner", code, "path", remotePath, "error", err)
		for _, o := range shipped {
			res.AddError(model.ErrFailedToProcess, o.PurchaseOrderNumber)
		}
		return nil, false
	}

	slog.Info("partner manifest uploaded", "partner", code, "path", remotePath, "rows", len(rows))
	res.AddFile(remotePath)

	pos := make([]string, 0, len(shipped))
	for _, o := range shipped {
		res.AddProcessed(o.PurchaseOrderNumber)
		pos = append(pos, o.PurchaseOrderNumber)
	}

	contact := orders[0]
	if email := strings.TrimSpace(contact.InvoiceEmail); contact.EmailNotifications && email != "" {
		res.AddContactOrders(email, pos)
	}
	return shipped, true
}
