package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"skill-hire/internal/domain/application"
	"skill-hire/internal/infrastructure/metrics"
	"skill-hire/internal/repository"

	"github.com/google/uuid"
)

const StatusChangedRoutingKey = "application.status_changed"

// EventPublisher fans domain events out to other services. Publishing is best
// effort and never fails the request that caused it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey string, v any) error
}

type StatusNotifier interface {
	ApplicationStatusChanged(employeeID, applicationID, jobID uuid.UUID, status string)
}

type StatusChangedEvent struct {
	ApplicationID uuid.UUID `json:"application_id"`
	JobID         uuid.UUID `json:"job_id"`
	EmployeeID    uuid.UUID `json:"employee_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Trigger       string    `json:"trigger"`
	At            time.Time `json:"at"`
}

// StatusTracker is the only writer of application status. Every change goes
// through application.Transition and is announced afterwards.
type StatusTracker struct {
	apps     repository.ApplicationRepository
	events   EventPublisher
	notifier StatusNotifier
	logger   *log.Logger
	now      func() time.Time
}

func NewStatusTracker(apps repository.ApplicationRepository, events EventPublisher, notifier StatusNotifier, logger *log.Logger) *StatusTracker {
	if logger == nil {
		logger = log.Default()
	}
	return &StatusTracker{apps: apps, events: events, notifier: notifier, logger: logger, now: time.Now}
}

// Advance applies trigger to app. The write is conditional on the status the
// caller read; when another writer got there first the row is re-read and the
// decision taken again, once.
func (t *StatusTracker) Advance(ctx context.Context, app application.Application, trigger application.Trigger, target application.Status) (application.Application, bool, error) {
	for attempt := 0; ; attempt++ {
		next, changed, err := application.Transition(app.Status, trigger, target)
		if err != nil {
			return app, false, ErrInvalidStatus
		}
		if !changed {
			return app, false, nil
		}

		err = t.apps.UpdateStatus(ctx, app.ID, app.Status, next)
		if err == nil {
			from := app.Status
			app.Status = next
			app.UpdatedAt = t.now().UTC()
			t.announce(ctx, app, from, trigger)
			return app, true, nil
		}
		if !errors.Is(err, repository.ErrStatusChanged) || attempt > 0 {
			t.logger.Printf("application id=%s step=update_status status=error err=%v", app.ID, err)
			return app, false, ErrInternal
		}

		fresh, gerr := t.apps.GetAccess(ctx, app.ID)
		if gerr != nil {
			if errors.Is(gerr, repository.ErrApplicationNotFound) {
				return app, false, ErrApplicationNotFound
			}
			return app, false, ErrInternal
		}
		app = fresh.Application
	}
}

func (t *StatusTracker) announce(ctx context.Context, app application.Application, from application.Status, trigger application.Trigger) {
	metrics.ApplicationTransitions.WithLabelValues(string(trigger), string(app.Status)).Inc()
	t.logger.Printf("application id=%s trigger=%s from=%s to=%s", app.ID, trigger, from, app.Status)

	if t.notifier != nil {
		t.notifier.ApplicationStatusChanged(app.EmployeeID, app.ID, app.JobID, string(app.Status))
	}
	if t.events != nil {
		ev := StatusChangedEvent{
			ApplicationID: app.ID,
			JobID:         app.JobID,
			EmployeeID:    app.EmployeeID,
			From:          string(from),
			To:            string(app.Status),
			Trigger:       string(trigger),
			At:            t.now().UTC(),
		}
		if err := t.events.PublishEvent(ctx, StatusChangedRoutingKey, ev); err != nil {
			t.logger.Printf("application id=%s step=publish_event status=error err=%v", app.ID, err)
		}
	}
}
