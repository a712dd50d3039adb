package model

import "sort"

// Keys of Result.Errors.
const (
	ErrFailedToProcess   = "failed_to_process"
	ErrMissingTracking   = "missing_tracking"
	ErrFailedToPutOnHold = "failed_to_put_on_hold"
	ErrFailedToCancel    = "failed_to_cancel"
	ErrProblemOrder      = "problem_order"
)

// Result accumulates the outcome of one run. It is not safe for concurrent
// use.
type Result struct {
	FilesUploaded            []string            `json:"files_uploaded"`
	OrdersProcessed          []string            `json:"orders_processed"`
	Errors                   map[string][]string `json:"errors"`
	MissingTracking          []string            `json:"missing_tracking"`
	OrdersProcessedByContact map[string][]string `json:"orders_processed_by_partner_contact"`

	processed map[string]struct{}
}

func NewResult() *Result {
	return &Result{
		FilesUploaded:   []string{},
		OrdersProcessed: []string{},
		Errors: map[string][]string{
			ErrFailedToProcess: {},
			ErrMissingTracking: {},
		},
		MissingTracking:          []string{},
		OrdersProcessedByContact: map[string][]string{},
		processed:                map[string]struct{}{},
	}
}

func (r *Result) AddFile(remotePath string) {
	r.FilesUploaded = append(r.FilesUploaded, remotePath)
}

// AddProcessed records a PO once, keeping first-seen order.
func (r *Result) AddProcessed(po string) {
	if po == "" {
		return
	}
	if _, ok := r.processed[po]; ok {
		return
	}
	r.processed[po] = struct{}{}
	r.OrdersProcessed = append(r.OrdersProcessed, po)
}

func (r *Result) AddError(key, po string) {
	for _, existing := range r.Errors[key] {
		if existing == po {
			return
		}
	}
	r.Errors[key] = append(r.Errors[key], po)
}

func (r *Result) AddMissingTracking(po string) {
	for _, existing := range r.MissingTracking {
		if existing == po {
			return
		}
	}
	r.MissingTracking = append(r.MissingTracking, po)
	r.Errors[ErrMissingTracking] = append(r.Errors[ErrMissingTracking], po)
}

// AddContactOrders merges pos into the sorted set kept for email.
func (r *Result) AddContactOrders(email string, pos []string) {
	set := make(map[string]struct{}, len(pos)+len(r.OrdersProcessedByContact[email]))
	for _, po := range r.OrdersProcessedByContact[email] {
		set[po] = struct{}{}
	}
	for _, po := range pos {
		if po != "" {
			set[po] = struct{}{}
		}
	}
	merged := make([]string, 0, len(set))
	for po := range set {
		merged = append(merged, po)
	}
	sort.Strings(merged)
	r.OrdersProcessedByContact[email] = merged
}

// HasErrors reports whether any error bucket is non-empty.
func (r *Result) HasErrors() bool {
	for _, pos := range r.Errors {
		if len(pos) > 0 {
			return true
		}
	}
	return false
}
