package reconcile

import (
	"context"
	"errors"
	"sync"

	"dropship-tracking/internal/model"
	"dropship-tracking/internal/service"
)

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]*service.OrderResponse
	errs      map[string]error
	calls     []string
}

func (f *fakeFetcher) GetOrder(ctx context.Context, id string) (*service.OrderResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	if resp, ok := f.responses[id]; ok {
		return resp, nil
	}
	return &service.OrderResponse{StatusCode: 404, Text: "not found"}, nil
}

func ok(body map[string]any) *service.OrderResponse {
	return &service.OrderResponse{StatusCode: 200, Body: body}
}

type fakeStore struct {
	saved     []map[string][]model.EnrichedOrder
	saveErr   error
	cancelled []string
	onHold    []string
	failFor   map[string]bool
}

func (s *fakeStore) SaveTracking(_ context.Context, byPartner map[string][]model.EnrichedOrder) (int, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	s.saved = append(s.saved, byPartner)
	n := 0
	for _, orders := range byPartner {
		n += len(orders)
	}
	return n, nil
}

func (s *fakeStore) MarkCancelled(_ context.Context, po string) error {
	if s.failFor[po] {
		return errors.New("db down")
	}
	s.cancelled = append(s.cancelled, po)
	return nil
}

func (s *fakeStore) MarkOnHold(_ context.Context, po string) error {
	if s.failFor[po] {
		return errors.New("db down")
	}
	s.onHold = append(s.onHold, po)
	return nil
}

type upload struct {
	path    string
	content string
}

type fakeUploader struct {
	uploads []upload
	failFor map[string]bool
}

func (u *fakeUploader) Upload(_ context.Context, content []byte, remotePath string) error {
	if u.failFor[remotePath] {
		return errors.New("connection reset")
	}
	u.uploads = append(u.uploads, upload{path: remotePath, content: string(content)})
	return nil
}

func pending(po, extID, partner string, items ...model.OrderItem) model.PendingOrder {
	if len(items) == 0 {
		items = []model.OrderItem{{SKU: model.ParseSKU("A1"), Quantity: 2}}
	}
	return model.PendingOrder{
		PurchaseOrderNumber: po,
		ExternalOrderID:     extID,
		PartnerCode:         partner,
		ShipMethod:          "UPS Ground",
		Items:               items,
	}
}
