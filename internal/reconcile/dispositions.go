package reconcile

import (
	"context"
	"log/slog"

	"dropship-tracking/internal/model"
)

type DispositionWriter interface {
	MarkCancelled(ctx context.Context, poNumber string) error
	MarkOnHold(ctx context.Context, poNumber string) error
}

// ApplyDispositions mirrors cancelled and on-hold orders into the system of
// record. Every call stands alone; failures are logged and collected in res.
// Problem orders are only flagged for review.
func ApplyDispositions(ctx context.Context, w DispositionWriter, p *Partition, res *model.Result) {
	for _, o := range p.Cancelled {
		if err := w.MarkCancelled(ctx, o.PurchaseOrderNumber); err != nil {
			slog.Error("failed to mark order cancelled", "po", o.PurchaseOrderNumber, "error", err)
			res.AddError(model.ErrFailedToCancel, o.PurchaseOrderNumber)
		}
	}
	for _, o := range p.OnHold {
		if err := w.MarkOnHold(ctx, o.PurchaseOrderNumber); err != nil {
			slog.Error("failed to put order on hold", "po", o.PurchaseOrderNumber, "error", err)
			res.AddError(model.ErrFailedToPutOnHold, o.PurchaseOrderNumber)
		}
	}
	FlagProblems(p, res)
}

// FlagProblems lists problem orders in res for manual review.
func FlagProblems(p *Partition, res *model.Result) {
	for _, o := range p.Problem {
		res.AddError(model.ErrProblemOrder, o.PurchaseOrderNumber)
	}
}
