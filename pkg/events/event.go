package events

import "time"

// Event is the contract every system event satisfies.
type Event interface {
	// EventType returns the unique code for this event (e.g., "user.registered").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a plain Event implementation for ad-hoc events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// UserRegistered is emitted after a successful signup so downstream
// consumers (mailer) can act without blocking the request.
func UserRegistered(userID, email, fullName, verifyToken string) BaseEvent {
	return BaseEvent{
		Type: "user.registered",
		Data: map[string]interface{}{
			"user_id":      userID,
			"email":        email,
			"full_name":    fullName,
			"verify_token": verifyToken,
		},
		OccurredAt: time.Now(),
	}
}
