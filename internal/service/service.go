package service

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/events"
	"alcyxob/coaching-app/internal/metrics"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrAccessDenied = errors.New("access denied")
	ErrCoachOnly    = fmt.Errorf("%w: only coaches can perform this operation", ErrAccessDenied)
)

// Infra bundles the cross-cutting collaborators every service uses.
type Infra struct {
	Logger    *zap.Logger
	Metrics   *metrics.Manager
	Publisher events.Publisher
	// Now is the service clock; time.Now when nil.
	Now func() time.Time
}

func (in Infra) now() time.Time {
	if in.Now != nil {
		return in.Now().UTC()
	}
	return time.Now().UTC()
}

// rejections are expected outcomes caused by the request, not by the system.
var rejections = []error{
	domain.ErrValidation,
	domain.ErrConflict,
	domain.ErrCapacity,
	domain.ErrTypeMismatch,
	domain.ErrIncompatibleState,
	domain.ErrNotFound,
	ErrAccessDenied,
}

// IsRejection reports whether err is a domain or access rule refusing the request.
func IsRejection(err error) bool {
	for _, kind := range rejections {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// finish records the outcome of an operation and logs unexpected failures.
func (in Infra) finish(op string, err error, fields ...zap.Field) {
	switch {
	case err == nil:
		in.Metrics.ObserveOperation(op, metrics.OutcomeOK)
		in.Logger.Debug("operation done", append(fields, zap.String("op", op))...)
	case IsRejection(err):
		in.Metrics.ObserveOperation(op, metrics.OutcomeRejected)
		in.Logger.Debug("operation rejected", append(fields, zap.String("op", op), zap.Error(err))...)
	default:
		in.Metrics.ObserveOperation(op, metrics.OutcomeError)
		in.Logger.Error("operation failed", append(fields, zap.String("op", op), zap.Error(err))...)
	}
}

// publish hands ev to the notification system. Delivery problems never fail
// the operation that produced the event.
func (in Infra) publish(ctx context.Context, ev domain.Event) {
	if in.Publisher == nil {
		return
	}
	if err := in.Publisher.Publish(ctx, ev); err != nil {
		in.Logger.Warn("failed to publish event",
			zap.String("type", string(ev.Type)),
			zap.String("planId", ev.PlanID),
			zap.Error(err),
		)
	}
}

// notFound turns a repository miss into the domain NotFound kind.
func notFound(err error, what, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, what, id)
	}
	return err
}

func requireCoach(caller domain.Caller) error {
	if !caller.IsCoach() {
		return ErrCoachOnly
	}
	return nil
}

// requireClientAccess lets coaches of the organization through, and clients
// only for their own data.
func requireClientAccess(caller domain.Caller, clientID string) error {
	if caller.IsCoach() {
		return nil
	}
	if caller.IsClient() && caller.UserID == clientID {
		return nil
	}
	return fmt.Errorf("%w: client %s", ErrAccessDenied, clientID)
}
