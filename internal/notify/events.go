package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"dropship-tracking/internal/model"
)

// RunEvent is the record published for every finished run.
type RunEvent struct {
	RunID           string              `json:"runId"`
	Status          string              `json:"status"`
	Error           string              `json:"error,omitempty"`
	FilesUploaded   []string            `json:"filesUploaded,omitempty"`
	OrdersProcessed []string            `json:"ordersProcessed,omitempty"`
	MissingTracking []string            `json:"missingTracking,omitempty"`
	Errors          map[string][]string `json:"errors,omitempty"`
	FinishedAt      int64               `json:"finishedAt"`
}

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// EventPublisher writes run events keyed by run id.
type EventPublisher struct {
	writer kafkaMessageWriter
	now    func() time.Time
}

// NewEventPublisher creates a Kafka publisher. brokers can be
// comma-separated.
func NewEventPublisher(brokers, topic string) *EventPublisher {
	var addrs []string
	for _, a := range strings.Split(brokers, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return NewEventPublisherWith(&kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	})
}

func NewEventPublisherWith(w kafkaMessageWriter) *EventPublisher {
	return &EventPublisher{writer: w, now: time.Now}
}

func (p *EventPublisher) Notify(ctx context.Context, runID string, res *model.Result) error {
	return p.publish(ctx, RunEvent{
		RunID:           runID,
		Status:          "success",
		FilesUploaded:   res.FilesUploaded,
		OrdersProcessed: res.OrdersProcessed,
		MissingTracking: res.MissingTracking,
		Errors:          res.Errors,
	})
}

func (p *EventPublisher) NotifyFailure(ctx context.Context, runID string, cause error) error {
	return p.publish(ctx, RunEvent{RunID: runID, Status: "failure", Error: cause.Error()})
}

func (p *EventPublisher) publish(ctx context.Context, ev RunEvent) error {
	ev.FinishedAt = p.now().UTC().Unix()
	b, err := json.Marshal(&ev)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.RunID), Value: b}); err != nil {
		return fmt.Errorf("publish run event: %w", err)
	}
	return nil
}

// Close flushes the underlying writer when it supports closing.
func (p *EventPublisher) Close() error {
	if c, ok := p.writer.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
