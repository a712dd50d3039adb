// Package notify reports run outcomes to people and to other systems. It
// only reads the run result.
package notify

import (
	"context"
	"errors"

	"dropship-tracking/internal/model"
)

type Notifier interface {
	Notify(ctx context.Context, runID string, res *model.Result) error
	NotifyFailure(ctx context.Context, runID string, cause error) error
}

type multi []Notifier

// Multi fans out to every notifier and joins their errors.
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

func (m multi) Notify(ctx context.Context, runID string, res *model.Result) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.Notify(ctx, runID, res))
	}
	return errors.Join(errs...)
}

func (m multi) NotifyFailure(ctx context.Context, runID string, cause error) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.NotifyFailure(ctx, runID, cause))
	}
	return errors.Join(errs...)
}
