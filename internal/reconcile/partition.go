package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"dropship-tracking/internal/model"
	"dropship-tracking/internal/service"
)

// UnknownPartner buckets orders that carry no partner code.
const UnknownPartner = "UNKNOWN"

const maxLoggedBody = 512

type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID string) (*service.OrderResponse, error)
}

// Partition is the outcome of classifying one batch of pending orders.
type Partition struct {
	ByPartner map[string][]model.EnrichedOrder
	Cancelled []model.EnrichedOrder
	OnHold    []model.EnrichedOrder
	Problem   []model.EnrichedOrder
	// Skipped holds PO numbers that could not be enriched.
	Skipped []string
	// Untracked holds processable PO numbers left pending for a later run.
	Untracked []string
}

// Partitioner enriches pending orders from SellerCloud and sorts them by
// disposition.
type Partitioner struct {
	fetcher OrderFetcher
	workers int
}

func NewPartitioner(fetcher OrderFetcher, workers int) *Partitioner {
	if workers < 1 {
		workers = 1
	}
	return &Partitioner{fetcher: fetcher, workers: workers}
}

// Partition fetches every order with a SellerCloud id on a bounded pool and
// buckets the results in input order. A failed fetch only skips that order;
// an error is returned only when ctx ends first.
func (p *Partitioner) Partition(ctx context.Context, orders []model.PendingOrder) (*Partition, error) {
	enriched := make([]*model.EnrichedOrder, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, order := range orders {
		if order.ExternalOrderID == "" {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			enriched[i] = p.enrich(gctx, order)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("partition orders: %w", err)
	}

	out := &Partition{ByPartner: make(map[string][]model.EnrichedOrder)}
	for i, eo := range enriched {
		if eo == nil {
			out.Skipped = append(out.Skipped, orders[i].PurchaseOrderNumber)
			continue
		}
		switch eo.Disposition() {
		case model.DispositionCancelled:
			out.Cancelled = append(out.Cancelled, *eo)
		case model.DispositionOnHold:
			out.OnHold = append(out.OnHold, *eo)
		case model.DispositionProblem:
			out.Problem = append(out.Problem, *eo)
		default:
			if !eo.HasTracking() {
				out.Untracked = append(out.Untracked, eo.PurchaseOrderNumber)
				continue
			}
			code := eo.PartnerCode
			if code == "" {
				code = UnknownPartner
			}
			out.ByPartner[code] = append(out.ByPartner[code], *eo)
		}
	}
	return out, nil
}

func (p *Partitioner) enrich(ctx context.Context, order model.PendingOrder) *model.EnrichedOrder {
	resp, err := p.fetcher.GetOrder(ctx, order.ExternalOrderID)
	if err != nil {
		slog.Warn("failed to fetch sellercloud order",
			"po", order.PurchaseOrderNumber, "sellercloud_order_id", order.ExternalOrderID, "error", err)
		return nil
	}
	if !resp.OK() {
		slog.Warn("failed to fetch sellercloud order",
			"po", order.PurchaseOrderNumber, "sellercloud_order_id", order.ExternalOrderID,
			"status", resp.StatusCode, "body", truncate(resp.Text, maxLoggedBody))
		return nil
	}

	if resp.Body == nil {
		slog.Warn("sellercloud order has no readable body",
			"po", order.PurchaseOrderNumber, "sellercloud_order_id", order.ExternalOrderID,
			"body", truncate(resp.Text, maxLoggedBody))
		return nil
	}

	doc := resp.Body
	raw := extractStatus(doc)
	eo := &model.EnrichedOrder{
		PendingOrder:   order,
		Status:         model.ResolveStatus(raw),
		RawStatus:      raw,
		TrackingNumber: extractTracking(doc),
		TrackingDate:   model.NormalizeShipDate(extractTrackingDate(doc)),
	}
	eo.Items = append([]model.OrderItem(nil), order.Items...)

	slog.Debug("sellercloud order status",
		"po", order.PurchaseOrderNumber, "sellercloud_order_id", order.ExternalOrderID,
		"raw_status", raw, "status", eo.Status, "tracking", eo.TrackingNumber)
	return eo
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Count is the number of orders that were enriched, whatever their bucket.
func (p *Partition) Count() int {
	n := len(p.Cancelled) + len(p.OnHold) + len(p.Problem) + len(p.Untracked)
	for _, orders := range p.ByPartner {
		n += len(orders)
	}
	return n
}
