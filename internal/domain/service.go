// Package domain defines the registration rules for school activities.
package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/events"
	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/observability"
	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/publisher"
)

const (
	operationSignup     = "signup"
	operationUnregister = "unregister"

	publishTimeout = 2 * time.Second

	tracerName = "github.com/josefzacek/skills-getting-started-with-github-copilot/internal/domain"
)

// Registry owns the activity rosters and enforces the registration invariants.
type Registry interface {
	List(ctx context.Context) []Activity
	Signup(ctx context.Context, activity, participant string) (RegistrationResult, error)
	Unregister(ctx context.Context, activity, participant string) (RegistrationResult, error)
}

// EventPublisher delivers registration events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt events.RegistrationChanged) error
}

// Service orchestrates registry calls with events, metrics and logging.
type Service struct {
	registry  Registry
	publisher EventPublisher
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTracerProvider sets the provider the service's spans are recorded on.
// Without it the global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// NewService constructs a Service. A nil publisher discards events and a nil logger logs nothing.
func NewService(registry Registry, pub EventPublisher, logger *zap.Logger, opts ...Option) *Service {
	if pub == nil {
		pub = publisher.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		registry:  registry,
		publisher: pub,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActivities returns a snapshot of every activity.
func (s *Service) ListActivities(ctx context.Context) []Activity {
	ctx, span := s.tracer.Start(ctx, "activities.list")
	defer span.End()

	activities := s.registry.List(ctx)
	span.SetAttributes(attribute.Int("activities.count", len(activities)))
	return activities
}

// Signup adds participant to the activity roster.
func (s *Service) Signup(ctx context.Context, activity, participant string) (RegistrationResult, error) {
	return s.mutate(ctx, operationSignup, activity, participant, s.registry.Signup)
}

// Unregister removes participant from the activity roster.
func (s *Service) Unregister(ctx context.Context, activity, participant string) (RegistrationResult, error) {
	return s.mutate(ctx, operationUnregister, activity, participant, s.registry.Unregister)
}

type registryOp func(ctx context.Context, activity, participant string) (RegistrationResult, error)

func (s *Service) mutate(ctx context.Context, operation, activity, participant string, op registryOp) (RegistrationResult, error) {
	ctx, span := s.tracer.Start(ctx, "activities."+operation, trace.WithAttributes(
		attribute.String("activity.name", activity),
	))
	defer span.End()

	participant = strings.TrimSpace(participant)
	log := s.logger.With(zap.String("operation", operation), zap.String("activity", activity), zap.String("participant", participant))

	var (
		result RegistrationResult
		err    error
	)
	if participant == "" {
		err = ErrInvalidParticipant
	} else {
		result, err = op(ctx, activity, participant)
	}

	outcome := OutcomeOf(err)
	observability.RecordRegistration(operation, outcome)
	span.SetAttributes(attribute.String("registration.outcome", outcome))
	if err != nil {
		span.SetStatus(codes.Error, outcome)
		log.Info("registration rejected", zap.String("outcome", outcome), zap.Error(err))
		return RegistrationResult{}, err
	}

	observability.RecordEnrollment(result.Activity, result.Enrolled, result.Capacity)
	log.Info("registration applied", zap.Int("spots_left", result.SpotsLeft))

	action := events.ActionSignedUp
	if operation == operationUnregister {
		action = events.ActionUnregistered
	}
	s.publish(ctx, log, events.RegistrationChanged{
		EventID:     uuid.NewString(),
		Activity:    result.Activity,
		Participant: result.Participant,
		Action:      action,
		Enrolled:    result.Enrolled,
		Capacity:    result.Capacity,
		SpotsLeft:   result.SpotsLeft,
		OccurredAt:  s.now(),
	})
	return result, nil
}

// publish is best effort: the roster change has already happened.
func (s *Service) publish(ctx context.Context, log *zap.Logger, evt events.RegistrationChanged) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, evt); err != nil {
		observability.RecordPublishFailure()
		log.Warn("registration event not published", zap.String("event_id", evt.EventID), zap.Error(err))
	}
}

// SignupMessage is the confirmation shown to the student after signing up.
func SignupMessage(r RegistrationResult) string {
	return fmt.Sprintf("Signed up %s for %s", r.Participant, r.Activity)
}

// UnregisterMessage is the confirmation shown after leaving an activity.
func UnregisterMessage(r RegistrationResult) string {
	return fmt.Sprintf("Unregistered %s from %s", r.Participant, r.Activity)
}
