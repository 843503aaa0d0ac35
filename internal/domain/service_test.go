package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/events"
)

func TestSignupPublishesEvent(t *testing.T) {
	now := time.Date(2025, time.September, 5, 15, 30, 0, 0, time.UTC)
	reg := &stubRegistry{result: RegistrationResult{
		Activity:    "Chess Club",
		Participant: "newstudent@mergington.edu",
		Enrolled:    3,
		Capacity:    12,
		SpotsLeft:   9,
	}}
	pub := &stubPublisher{}
	svc := NewService(reg, pub, zaptest.NewLogger(t), WithClock(func() time.Time { return now }))

	res, err := svc.Signup(context.Background(), "Chess Club", "  newstudent@mergington.edu ")
	require.NoError(t, err)
	require.Equal(t, 9, res.SpotsLeft)
	require.Equal(t, "newstudent@mergington.edu", reg.lastParticipant, "participant id should be trimmed")
	require.Equal(t, "signup", reg.lastCall)

	require.Len(t, pub.published, 1)
	evt := pub.published[0]
	require.Equal(t, events.ActionSignedUp, evt.Action)
	require.Equal(t, "Chess Club", evt.Activity)
	require.Equal(t, "newstudent@mergington.edu", evt.Participant)
	require.Equal(t, 9, evt.SpotsLeft)
	require.Equal(t, now, evt.OccurredAt)
	require.NotEmpty(t, evt.EventID)
}

func TestUnregisterPublishesUnregisteredEvent(t *testing.T) {
	reg := &stubRegistry{result: RegistrationResult{Activity: "Chess Club", Participant: "michael@mergington.edu", Enrolled: 1, Capacity: 12, SpotsLeft: 11}}
	pub := &stubPublisher{}
	svc := NewService(reg, pub, zaptest.NewLogger(t))

	_, err := svc.Unregister(context.Background(), "Chess Club", "michael@mergington.edu")
	require.NoError(t, err)
	require.Equal(t, "unregister", reg.lastCall)
	require.Len(t, pub.published, 1)
	require.Equal(t, events.ActionUnregistered, pub.published[0].Action)
}

func TestRejectedRegistrationDoesNotPublish(t *testing.T) {
	reg := &stubRegistry{err: ErrCapacityExceeded}
	pub := &stubPublisher{}
	svc := NewService(reg, pub, zaptest.NewLogger(t))

	_, err := svc.Signup(context.Background(), "Chess Club", "c@x.com")
	require.ErrorIs(t, err, ErrCapacityExceeded)
	require.Empty(t, pub.published)
}

func TestBlankParticipantRejectedBeforeRegistry(t *testing.T) {
	reg := &stubRegistry{}
	svc := NewService(reg, nil, nil)

	_, err := svc.Signup(context.Background(), "Chess Club", "   ")
	require.ErrorIs(t, err, ErrInvalidParticipant)
	require.Empty(t, reg.lastCall)

	_, err = svc.Unregister(context.Background(), "Chess Club", "")
	require.ErrorIs(t, err, ErrInvalidParticipant)
	require.Empty(t, reg.lastCall)
}

func TestPublishFailureDoesNotFailRegistration(t *testing.T) {
	reg := &stubRegistry{result: RegistrationResult{Activity: "Chess Club", Participant: "a@x.com", Enrolled: 1, Capacity: 2, SpotsLeft: 1}}
	pub := &stubPublisher{err: errors.New("broker unavailable")}
	svc := NewService(reg, pub, zaptest.NewLogger(t))

	res, err := svc.Signup(context.Background(), "Chess Club", "a@x.com")
	require.NoError(t, err)
	require.Equal(t, 1, res.SpotsLeft)
}

func TestListActivitiesPassesThroughSnapshot(t *testing.T) {
	reg := &stubRegistry{activities: []Activity{
		{Name: "Chess Club", MaxParticipants: 12, Participants: []string{"michael@mergington.edu"}},
	}}
	svc := NewService(reg, nil, zaptest.NewLogger(t))

	got := svc.ListActivities(context.Background())
	require.Len(t, got, 1)
	require.Equal(t, 11, got[0].SpotsLeft())
}

func TestListActivitiesLeavesGaugesAlone(t *testing.T) {
	reg := &stubRegistry{activities: []Activity{
		{Name: "Quiet Reading Club", MaxParticipants: 8, Participants: []string{"a@x.com"}},
	}}
	svc := NewService(reg, nil, zaptest.NewLogger(t))

	svc.ListActivities(context.Background())
	svc.ListActivities(context.Background())

	require.False(t, participantsGaugeExists(t, "Quiet Reading Club"))
}

func TestServiceRecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	reg := &stubRegistry{
		activities: []Activity{{Name: "Chess Club", MaxParticipants: 12}},
		err:        ErrCapacityExceeded,
	}
	svc := NewService(reg, nil, zaptest.NewLogger(t), WithTracerProvider(tp))

	_, err := svc.Signup(context.Background(), "Chess Club", "c@x.com")
	require.ErrorIs(t, err, ErrCapacityExceeded)

	reg.err = nil
	reg.result = RegistrationResult{Activity: "Chess Club", Participant: "c@x.com", Capacity: 12, SpotsLeft: 12}
	_, err = svc.Unregister(context.Background(), "Chess Club", "c@x.com")
	require.NoError(t, err)

	svc.ListActivities(context.Background())

	spans := sr.Ended()
	require.Len(t, spans, 3)

	require.Equal(t, "activities.signup", spans[0].Name())
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.Equal(t, OutcomeCapacityExceeded, spanAttr(t, spans[0], "registration.outcome").AsString())
	require.Equal(t, "Chess Club", spanAttr(t, spans[0], "activity.name").AsString())

	require.Equal(t, "activities.unregister", spans[1].Name())
	require.Equal(t, codes.Unset, spans[1].Status().Code)
	require.Equal(t, OutcomeOK, spanAttr(t, spans[1], "registration.outcome").AsString())

	require.Equal(t, "activities.list", spans[2].Name())
	require.EqualValues(t, 1, spanAttr(t, spans[2], "activities.count").AsInt64())
}

func spanAttr(t *testing.T, span sdktrace.ReadOnlySpan, key attribute.Key) attribute.Value {
	t.Helper()
	set := attribute.NewSet(span.Attributes()...)
	v, ok := set.Value(key)
	require.True(t, ok, "span %s has no attribute %s", span.Name(), key)
	return v
}

func participantsGaugeExists(t *testing.T, activity string) bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "activities_service_registry_participants" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "activity" && lp.GetValue() == activity {
					return true
				}
			}
		}
	}
	return false
}

func TestOutcomeOf(t *testing.T) {
	cases := map[error]string{
		nil:                                  OutcomeOK,
		ErrActivityNotFound:                  OutcomeNotFound,
		ErrAlreadyRegistered:                 OutcomeAlreadyRegistered,
		ErrCapacityExceeded:                  OutcomeCapacityExceeded,
		ErrNotRegistered:                     OutcomeNotRegistered,
		ErrInvalidParticipant:                OutcomeInvalid,
		errors.New("boom"):                   OutcomeError,
		wrapf(ErrCapacityExceeded, "Chess"):  OutcomeCapacityExceeded,
		wrapf(ErrActivityNotFound, "Poetry"): OutcomeNotFound,
	}
	for err, want := range cases {
		require.Equal(t, want, OutcomeOf(err), "error %v", err)
	}
}

func TestMessages(t *testing.T) {
	r := RegistrationResult{Activity: "Chess Club", Participant: "a@x.com"}
	require.Equal(t, "Signed up a@x.com for Chess Club", SignupMessage(r))
	require.Equal(t, "Unregistered a@x.com from Chess Club", UnregisterMessage(r))
}

func TestActivityValidate(t *testing.T) {
	require.NoError(t, Activity{Name: "Chess Club", MaxParticipants: 1, Participants: []string{"a@x.com"}}.Validate())
	require.Error(t, Activity{Name: "Chess Club", MaxParticipants: 1, Participants: []string{" "}}.Validate())
	require.ErrorContains(t, Activity{Name: "Chess Club", MaxParticipants: 2, Participants: []string{"a@x.com "}}.Validate(), "surrounding whitespace")
	require.Error(t, Activity{Name: "Chess Club", MaxParticipants: -1}.Validate())
}

func TestSpotsLeftNeverNegative(t *testing.T) {
	a := Activity{MaxParticipants: 1, Participants: []string{"a", "b"}}
	require.Equal(t, 0, a.SpotsLeft())
}

type wrappedErr struct {
	err  error
	name string
}

func (w wrappedErr) Error() string { return w.err.Error() + ": " + w.name }
func (w wrappedErr) Unwrap() error { return w.err }

func wrapf(err error, name string) error { return wrappedErr{err: err, name: name} }

type stubRegistry struct {
	activities      []Activity
	result          RegistrationResult
	err             error
	lastCall        string
	lastParticipant string
}

func (s *stubRegistry) List(context.Context) []Activity {
	return s.activities
}

func (s *stubRegistry) Signup(_ context.Context, _ string, participant string) (RegistrationResult, error) {
	s.lastCall = "signup"
	s.lastParticipant = participant
	return s.result, s.err
}

func (s *stubRegistry) Unregister(_ context.Context, _ string, participant string) (RegistrationResult, error) {
	s.lastCall = "unregister"
	s.lastParticipant = participant
	return s.result, s.err
}

type stubPublisher struct {
	published []events.RegistrationChanged
	err       error
}

func (p *stubPublisher) Publish(_ context.Context, evt events.RegistrationChanged) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, evt)
	return nil
}
