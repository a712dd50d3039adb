package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"dropship-tracking/internal/model"
)

func TestApplyDispositions_IsolatesFailures(t *testing.T) {
	store := &fakeStore{failFor: map[string]bool{"PO-1": true, "PO-3": true}}
	p := &Partition{
		Cancelled: []model.EnrichedOrder{tracked("PO-1", "AAG", ""), tracked("PO-2", "AAG", "")},
		OnHold:    []model.EnrichedOrder{tracked("PO-3", "AAG", ""), tracked("PO-4", "AAG", "1Z4")},
		Problem:   []model.EnrichedOrder{tracked("PO-5", "AAG", "1Z5")},
	}
	res := model.NewResult()

	ApplyDispositions(context.Background(), store, p, res)

	assert.Equal(t, []string{"PO-2"}, store.cancelled)
	assert.Equal(t, []string{"PO-4"}, store.onHold)
	assert.Equal(t, []string{"PO-1"}, res.Errors[model.ErrFailedToCancel])
	assert.Equal(t, []string{"PO-3"}, res.Errors[model.ErrFailedToPutOnHold])
	assert.Equal(t, []string{"PO-5"}, res.Errors[model.ErrProblemOrder])
}
