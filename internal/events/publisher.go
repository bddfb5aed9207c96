// Package events hands domain events to the external notification system.
package events

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/metrics"
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const taskTypePrefix = "coaching:"

// Publisher delivers a domain event. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// TaskType is the asynq task type an event is enqueued under.
func TaskType(t domain.EventType) string {
	return taskTypePrefix + string(t)
}

// NewEventTask wraps ev into a task carrying the JSON encoded event.
func NewEventTask(ev domain.Event, queue string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TaskType(ev.Type), b)
	opts := []asynq.Option{asynq.Queue(queue), asynq.MaxRetry(5)}

	return task, opts, nil
}

// Enqueuer is the part of *asynq.Client the publisher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqPublisher enqueues events on a Redis backed asynq queue.
type AsynqPublisher struct {
	client  Enqueuer
	queue   string
	metrics *metrics.Manager
	logger  *zap.Logger
}

func NewAsynqPublisher(client Enqueuer, queue string, m *metrics.Manager, logger *zap.Logger) *AsynqPublisher {
	return &AsynqPublisher{client: client, queue: queue, metrics: m, logger: logger}
}

func (p *AsynqPublisher) Publish(ctx context.Context, ev domain.Event) error {
	task, opts, err := NewEventTask(ev, p.queue)
	if err != nil {
		p.metrics.CounterEventsPublished.WithLabelValues(string(ev.Type), metrics.OutcomeError).Inc()
		return fmt.Errorf("encode %s event: %w", ev.Type, err)
	}
	info, err := p.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		p.metrics.CounterEventsPublished.WithLabelValues(string(ev.Type), metrics.OutcomeError).Inc()
		return fmt.Errorf("enqueue %s event: %w", ev.Type, err)
	}
	p.metrics.CounterEventsPublished.WithLabelValues(string(ev.Type), metrics.OutcomeOK).Inc()
	p.logger.Debug("event enqueued",
		zap.String("type", string(ev.Type)),
		zap.String("taskId", info.ID),
		zap.String("queue", info.Queue),
	)
	return nil
}

// LogPublisher only logs events. It is used when no queue is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.logger.Info("domain event",
		zap.String("type", string(ev.Type)),
		zap.String("organizationId", ev.OrganizationID),
		zap.String("clientId", ev.ClientID),
		zap.String("planId", ev.PlanID),
		zap.Time("occurredAt", ev.OccurredAt),
	)
	return nil
}
