// Package registry holds the authoritative activity rosters in memory.
package registry

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/domain"
)

// InMemoryRegistry stores activities for the lifetime of the process.
// Writers hold the exclusive lock for the whole check-and-mutate sequence so
// concurrent signups can never push a roster past its capacity.
type InMemoryRegistry struct {
	mu         sync.RWMutex
	order      []string
	activities map[string]*domain.Activity
}

// NewInMemoryRegistry validates the seed catalog and copies it into a new registry.
func NewInMemoryRegistry(seed []domain.Activity) (*InMemoryRegistry, error) {
	if err := domain.ValidateCatalog(seed); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	r := &InMemoryRegistry{
		order:      make([]string, 0, len(seed)),
		activities: make(map[string]*domain.Activity, len(seed)),
	}
	for _, a := range seed {
		clone := a.Clone()
		r.order = append(r.order, clone.Name)
		r.activities[clone.Name] = &clone
	}
	return r, nil
}

// List implements domain.Registry. Activities come back in catalog order and
// share no memory with the registry.
func (r *InMemoryRegistry) List(ctx context.Context) []domain.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Activity, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.activities[name].Clone())
	}
	return out
}

// Signup implements domain.Registry. Duplicates are reported before capacity.
func (r *InMemoryRegistry) Signup(ctx context.Context, name, participant string) (domain.RegistrationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		return domain.RegistrationResult{}, fmt.Errorf("%w: %s", domain.ErrActivityNotFound, name)
	}
	if slices.Contains(a.Participants, participant) {
		return domain.RegistrationResult{}, fmt.Errorf("%w: %s in %s", domain.ErrAlreadyRegistered, participant, name)
	}
	if len(a.Participants) >= a.MaxParticipants {
		return domain.RegistrationResult{}, fmt.Errorf("%w: %s (%d)", domain.ErrCapacityExceeded, name, a.MaxParticipants)
	}

	a.Participants = append(a.Participants, participant)
	return resultFor(a, participant), nil
}

// Unregister implements domain.Registry. The remaining roster keeps its order.
func (r *InMemoryRegistry) Unregister(ctx context.Context, name, participant string) (domain.RegistrationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		return domain.RegistrationResult{}, fmt.Errorf("%w: %s", domain.ErrActivityNotFound, name)
	}
	idx := slices.Index(a.Participants, participant)
	if idx < 0 {
		return domain.RegistrationResult{}, fmt.Errorf("%w: %s in %s", domain.ErrNotRegistered, participant, name)
	}

	a.Participants = slices.Delete(a.Participants, idx, idx+1)
	return resultFor(a, participant), nil
}

func resultFor(a *domain.Activity, participant string) domain.RegistrationResult {
	return domain.RegistrationResult{
		Activity:    a.Name,
		Participant: participant,
		Enrolled:    len(a.Participants),
		Capacity:    a.MaxParticipants,
		SpotsLeft:   a.SpotsLeft(),
	}
}
