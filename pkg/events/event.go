package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_ARCHIVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a ready-made Event implementation.
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

// Domain event types published to the bus.
const (
	TypeSessionArchived  = "SESSION_ARCHIVED"
	TypePatternDetected  = "PATTERN_DETECTED"
	TypeContentPreloaded = "CONTENT_PRELOADED"
)

// NewSessionArchived builds the event emitted when a session leaves live memory.
func NewSessionArchived(sessionID, userID, reason string, accuracy float64) Event {
	return BaseEvent{
		Type: TypeSessionArchived,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
			"reason":     reason,
			"accuracy":   accuracy,
		},
		OccurredAt: time.Now(),
	}
}

// NewPatternDetected builds the event emitted when analytics finds a new
// behavioral pattern for a user.
func NewPatternDetected(userID, kind, impact string, frequency int) Event {
	return BaseEvent{
		Type: TypePatternDetected,
		Data: map[string]interface{}{
			"user_id":   userID,
			"kind":      kind,
			"impact":    impact,
			"frequency": frequency,
		},
		OccurredAt: time.Now(),
	}
}
