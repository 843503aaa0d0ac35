// Package events defines the registration event payloads shared by the API and the roster consumer.
package events

import "time"

// Action describes what happened to a roster.
type Action string

const (
	ActionSignedUp     Action = "signed_up"
	ActionUnregistered Action = "unregistered"
)

// Event type names carried in the Kafka event_type header.
const (
	TypeSignedUp     = "registration.signed_up"
	TypeUnregistered = "registration.unregistered"
)

// RegistrationChanged is emitted after every successful signup or unregister.
type RegistrationChanged struct {
	EventID     string    `json:"event_id"`
	Activity    string    `json:"activity"`
	Participant string    `json:"participant"`
	Action      Action    `json:"action"`
	Enrolled    int       `json:"enrolled"`
	Capacity    int       `json:"capacity"`
	SpotsLeft   int       `json:"spots_left"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventType maps the action onto its header value. Unknown actions yield "".
func (e RegistrationChanged) EventType() string {
	switch e.Action {
	case ActionSignedUp:
		return TypeSignedUp
	case ActionUnregistered:
		return TypeUnregistered
	default:
		return ""
	}
}
