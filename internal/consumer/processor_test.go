package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestProcessorCommitsOnSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload := []byte(`{"activity":"Chess Club","action":"signed_up"}`)
	msg := kafka.Message{
		Topic:     "registration_events",
		Partition: 0,
		Offset:    10,
		Time:      time.Now().UTC(),
		Key:       []byte("Chess Club"),
		Value:     payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("registration.signed_up")},
			{Key: "event_id", Value: []byte("evt-1")},
		},
	}

	reader := &stubReader{
		messages: []kafka.Message{msg},
		after:    contextCanceled,
	}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(zaptest.NewLogger(t)))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, "registration.signed_up", handler.last.EventType)
	require.Equal(t, "evt-1", handler.last.EventID)
	require.Equal(t, "Chess Club", handler.last.Key)
	require.Equal(t, int64(10), handler.last.Offset)
	require.JSONEq(t, string(payload), string(handler.last.Payload))
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg := kafka.Message{
		Topic:  "registration_events",
		Offset: 20,
		Time:   time.Now().UTC(),
		Value:  []byte(`{"activity":"Gym Class","action":"unregistered"}`),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("registration.unregistered")},
		},
	}

	reader := &stubReader{
		messages: []kafka.Message{msg},
		after:    contextCanceled,
	}
	handler := &stubHandler{err: errors.New("boom")}

	processor := NewProcessor(reader, handler, WithLogger(zaptest.NewLogger(t)))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 0, reader.commitCalls)
}

func TestProcessorCommitsMalformedMessages(t *testing.T) {
	cases := map[string]kafka.Message{
		"empty payload": {
			Topic:   "registration_events",
			Headers: []kafka.Header{{Key: "event_type", Value: []byte("registration.signed_up")}},
		},
		"invalid json": {
			Topic:   "registration_events",
			Value:   []byte("{not json"),
			Headers: []kafka.Header{{Key: "event_type", Value: []byte("registration.signed_up")}},
		},
		"missing event_type": {
			Topic: "registration_events",
			Value: []byte(`{"activity":"Chess Club"}`),
		},
	}

	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			reader := &stubReader{messages: []kafka.Message{msg}, after: contextCanceled}
			handler := &stubHandler{}

			err := NewProcessor(reader, handler, WithLogger(zaptest.NewLogger(t))).Run(context.Background())
			require.ErrorIs(t, err, context.Canceled)

			require.Zero(t, handler.calls)
			require.Equal(t, 1, reader.commitCalls)
		})
	}
}

func TestProcessorStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &stubReader{}
	err := NewProcessor(reader, &stubHandler{}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, reader.index)
}

func TestProcessorBacksOffAfterFetchError(t *testing.T) {
	fetchErrs := 0
	reader := &stubReader{after: func() error {
		fetchErrs++
		if fetchErrs <= 2 {
			return errors.New("broker unavailable")
		}
		return context.Canceled
	}}

	start := time.Now()
	err := NewProcessor(reader, &stubHandler{}, WithLogger(zaptest.NewLogger(t)), WithFetchBackoff(20*time.Millisecond)).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 3, fetchErrs)
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestProcessorBackoffHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	fetchErrs := 0
	reader := &stubReader{after: func() error {
		fetchErrs++
		return errors.New("broker unavailable")
	}}

	start := time.Now()
	err := NewProcessor(reader, &stubHandler{}, WithFetchBackoff(time.Hour)).Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, fetchErrs)
	require.Less(t, time.Since(start), 5*time.Second)
}

type stubReader struct {
	messages    []kafka.Message
	index       int
	commitCalls int
	after       func() error
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.index >= len(r.messages) {
		if r.after != nil {
			return kafka.Message{}, r.after()
		}
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	r.commitCalls++
	return nil
}

func (r *stubReader) Close() error { return nil }

func contextCanceled() error { return context.Canceled }

type stubHandler struct {
	calls int
	err   error
	last  Message
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	return h.err
}
