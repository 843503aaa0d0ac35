package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/events"
)

// Roster is the consumer's view of one activity.
type Roster struct {
	Enrolled  int
	Capacity  int
	SpotsLeft int
	UpdatedAt time.Time
}

// RosterHandler folds registration events into per-activity roster gauges.
// Events older than the last one applied for the same activity are counted and dropped.
type RosterHandler struct {
	mu      sync.Mutex
	rosters map[string]Roster
	logger  *zap.Logger
}

// NewRosterHandler constructs a RosterHandler.
func NewRosterHandler(logger *zap.Logger) *RosterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterHandler{rosters: make(map[string]Roster), logger: logger}
}

// Handle implements Handler.
func (h *RosterHandler) Handle(ctx context.Context, msg Message) error {
	var evt events.RegistrationChanged
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("decode registration event: %w", err)
	}
	if evt.Activity == "" {
		return errors.New("registration event without activity")
	}
	if evt.EventType() == "" {
		return fmt.Errorf("unknown registration action %q", evt.Action)
	}
	if evt.EventType() != msg.EventType {
		return fmt.Errorf("event_type header %q does not match action %q", msg.EventType, evt.Action)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.rosters[evt.Activity]; ok && evt.OccurredAt.Before(prev.UpdatedAt) {
		rosterStaleCounter.Inc()
		h.logger.Debug("stale registration event", zap.String("activity", evt.Activity), zap.String("event_id", evt.EventID))
		return nil
	}

	h.rosters[evt.Activity] = Roster{
		Enrolled:  evt.Enrolled,
		Capacity:  evt.Capacity,
		SpotsLeft: evt.SpotsLeft,
		UpdatedAt: evt.OccurredAt,
	}
	rosterEnrolledGauge.WithLabelValues(evt.Activity).Set(float64(evt.Enrolled))
	rosterSpotsLeftGauge.WithLabelValues(evt.Activity).Set(float64(evt.SpotsLeft))
	rosterEventsCounter.WithLabelValues(string(evt.Action)).Inc()

	h.logger.Info("roster updated",
		zap.String("activity", evt.Activity),
		zap.String("action", string(evt.Action)),
		zap.Int("enrolled", evt.Enrolled),
		zap.Int("spots_left", evt.SpotsLeft),
	)
	return nil
}

// Snapshot returns a copy of the current rosters.
func (h *RosterHandler) Snapshot() map[string]Roster {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]Roster, len(h.rosters))
	for name, r := range h.rosters {
		out[name] = r
	}
	return out
}
