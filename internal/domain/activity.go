package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Activity is an extracurricular offering and its current roster.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// SpotsLeft reports how many participants can still sign up.
func (a Activity) SpotsLeft() int {
	left := a.MaxParticipants - len(a.Participants)
	if left < 0 {
		return 0
	}
	return left
}

// Clone returns a copy that shares no participant storage with a.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = make([]string, len(a.Participants))
	copy(out.Participants, a.Participants)
	return out
}

// Validate checks a single catalog entry.
func (a Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("activity name is required")
	}
	if a.MaxParticipants <= 0 {
		return fmt.Errorf("activity %q: max_participants must be > 0", a.Name)
	}
	if len(a.Participants) > a.MaxParticipants {
		return fmt.Errorf("activity %q: %d participants exceed capacity %d", a.Name, len(a.Participants), a.MaxParticipants)
	}
	seen := make(map[string]struct{}, len(a.Participants))
	for _, p := range a.Participants {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			return fmt.Errorf("activity %q: blank participant", a.Name)
		}
		// Requests are trimmed before they reach the registry, so a padded id could never be removed.
		if trimmed != p {
			return fmt.Errorf("activity %q: participant %q has surrounding whitespace", a.Name, p)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("activity %q: participant %s listed twice", a.Name, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// ValidateCatalog checks every entry and rejects duplicate activity names.
func ValidateCatalog(activities []Activity) error {
	if len(activities) == 0 {
		return errors.New("catalog is empty")
	}
	names := make(map[string]struct{}, len(activities))
	for _, a := range activities {
		if err := a.Validate(); err != nil {
			return err
		}
		if _, dup := names[a.Name]; dup {
			return fmt.Errorf("activity %q defined twice", a.Name)
		}
		names[a.Name] = struct{}{}
	}
	return nil
}

// RegistrationResult confirms a successful signup or unregister.
type RegistrationResult struct {
	Activity    string
	Participant string
	Enrolled    int
	Capacity    int
	SpotsLeft   int
}
