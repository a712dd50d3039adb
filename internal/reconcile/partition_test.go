package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"dropship-tracking/internal/model"
	"dropship-tracking/internal/service"
)

func statusDoc(code int, tracking string) map[string]any {
	doc := map[string]any{"Statuses": map[string]any{"OrderStatus": code}}
	if tracking != "" {
		doc["OrderPackages"] = []any{map[string]any{"TrackingNumber": tracking}}
	}
	return doc
}

func TestPartition_Dispositions(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := &fakeFetcher{responses: map[string]*service.OrderResponse{
		"SC1": ok(statusDoc(-1, "1Z999")),
		"SC2": ok(statusDoc(-1, "")),
		"SC3": ok(statusDoc(200, "1Z3")),
		"SC4": ok(statusDoc(100, "1Z4")),
		"SC5": ok(statusDoc(100, "")),
		"SC6": ok(statusDoc(3, "1Z6")),
		"SC7": ok(statusDoc(3, "")),
	}}
	orders := []model.PendingOrder{
		pending("PO-1", "SC1", "AAG"),
		pending("PO-2", "SC2", "AAG"),
		pending("PO-3", "SC3", "AAG"),
		pending("PO-4", "SC4", "AAG"),
		pending("PO-5", "SC5", "BBB"),
		pending("PO-6", "SC6", "BBB"),
		pending("PO-7", "SC7", "BBB"),
	}

	p, err := NewPartitioner(fetcher, 3).Partition(context.Background(), orders)
	require.NoError(t, err)

	assert.Equal(t, []string{"PO-1"}, poNumbers(p.ByPartner["AAG"]))
	assert.Equal(t, []string{"PO-6"}, poNumbers(p.ByPartner["BBB"]))
	assert.Equal(t, []string{"PO-2"}, poNumbers(p.Cancelled))
	assert.Equal(t, []string{"PO-3"}, poNumbers(p.OnHold))
	assert.Equal(t, []string{"PO-4", "PO-5"}, poNumbers(p.Problem))
	assert.Equal(t, []string{"PO-7"}, p.Untracked)
	assert.Empty(t, p.Skipped)
	assert.Equal(t, 7, p.Count())

	cancelledShipped := p.ByPartner["AAG"][0]
	assert.Equal(t, model.StatusCancelled, cancelledShipped.Status)
	assert.Equal(t, "1Z999", cancelledShipped.TrackingNumber)
}

func TestPartition_ProblemNeverProcessable(t *testing.T) {
	for _, tracking := range []string{"", "1Z1"} {
		fetcher := &fakeFetcher{responses: map[string]*service.OrderResponse{"SC1": ok(statusDoc(100, tracking))}}
		p, err := NewPartitioner(fetcher, 1).Partition(context.Background(), []model.PendingOrder{pending("PO-1", "SC1", "AAG")})
		require.NoError(t, err)
		assert.Empty(t, p.ByPartner, "tracking=%q", tracking)
		assert.Len(t, p.Problem, 1)
	}
}

func TestPartition_SkipsWithoutFetching(t *testing.T) {
	fetcher := &fakeFetcher{
		responses: map[string]*service.OrderResponse{
			"SC3": {StatusCode: 500, Text: "boom"},
			"SC4": ok(statusDoc(3, "1Z4")),
		},
		errs: map[string]error{"SC2": errors.New("dial tcp: timeout")},
	}
	orders := []model.PendingOrder{
		pending("PO-1", "", "AAG"),
		pending("PO-2", "SC2", "AAG"),
		pending("PO-3", "SC3", "AAG"),
		pending("PO-4", "SC4", "AAG"),
	}

	p, err := NewPartitioner(fetcher, 2).Partition(context.Background(), orders)
	require.NoError(t, err)

	assert.NotContains(t, fetcher.calls, "")
	assert.ElementsMatch(t, []string{"SC2", "SC3", "SC4"}, fetcher.calls)
	assert.Equal(t, []string{"PO-1", "PO-2", "PO-3"}, p.Skipped)
	assert.Equal(t, []string{"PO-4"}, poNumbers(p.ByPartner["AAG"]))
	assert.Empty(t, p.Cancelled)
	assert.Empty(t, p.OnHold)
	assert.Empty(t, p.Problem)
}

func TestPartition_KeepsInputOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := &fakeFetcher{responses: map[string]*service.OrderResponse{}}
	var orders []model.PendingOrder
	var want []string
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("SC%d", i)
		po := fmt.Sprintf("PO-%02d", 49-i)
		fetcher.responses[id] = ok(statusDoc(0, "TN"+id))
		orders = append(orders, pending(po, id, ""))
		want = append(want, po)
	}

	p, err := NewPartitioner(fetcher, 8).Partition(context.Background(), orders)
	require.NoError(t, err)
	assert.Equal(t, want, poNumbers(p.ByPartner[UnknownPartner]))
}

func TestPartition_EnrichedFields(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string]*service.OrderResponse{
		"SC1": ok(map[string]any{
			"Status":          "200x",
			"Shipments":       []any{map[string]any{"Packages": []any{map[string]any{"Tracking": "1ZABC"}}}},
			"ShippingDetails": map[string]any{"ShipDate": "2024/05/03 11:00:00"},
			"OrderDate":       "2024-04-01",
		}),
	}}
	order := pending("PO-1", "SC1", "AAG")
	order.Items = []model.OrderItem{{SKU: model.ParseSKU("A/B"), Quantity: 1}}

	p, err := NewPartitioner(fetcher, 1).Partition(context.Background(), []model.PendingOrder{order})
	require.NoError(t, err)
	require.Len(t, p.ByPartner["AAG"], 1)

	got := p.ByPartner["AAG"][0]
	assert.Equal(t, model.StatusUnknown, got.Status)
	assert.Equal(t, "200x", got.RawStatus)
	assert.Equal(t, "1ZABC", got.TrackingNumber)
	assert.Equal(t, "2024-05-03", got.TrackingDate)
	assert.Equal(t, order.Items, got.Items)

	got.Items[0].Quantity = 99
	assert.Equal(t, 1, order.Items[0].Quantity, "enriched order does not alias the pending order's items")
}

func TestPartition_ContextCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{responses: map[string]*service.OrderResponse{"SC1": ok(statusDoc(0, "1Z"))}}
	_, err := NewPartitioner(fetcher, 2).Partition(ctx, []model.PendingOrder{pending("PO-1", "SC1", "AAG")})
	require.ErrorIs(t, err, context.Canceled)
}

func poNumbers(orders []model.EnrichedOrder) []string {
	out := []string{}
	for _, o := range orders {
		out = append(out, o.PurchaseOrderNumber)
	}
	return out
}

func TestPartition_SkipsUnreadableBody(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string]*service.OrderResponse{
		"SC1": {StatusCode: 200, Text: "<html>maintenance</html>"},
		"SC2": ok(statusDoc(-1, "")),
	}}
	orders := []model.PendingOrder{pending("PO-1", "SC1", "AAG"), pending("PO-2", "SC2", "AAG")}

	p, err := NewPartitioner(fetcher, 2).Partition(context.Background(), orders)
	require.NoError(t, err)

	assert.Equal(t, []string{"PO-1"}, p.Skipped)
	assert.Empty(t, p.Untracked)
	assert.Empty(t, p.ByPartner)
	assert.Equal(t, []string{"PO-2"}, poNumbers(p.Cancelled))
}
