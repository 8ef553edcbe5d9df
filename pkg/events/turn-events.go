package events

import (
	"encoding/json"
	"time"

	"github.com/go-go-golems/skycast/pkg/conversation"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// TopicTurns carries one TurnEvent per turn appended to a conversation log.
const TopicTurns = "turns"

type EventType string

const (
	EventTypeTurnAppended EventType = "turn-appended"
)

type EventMetadata struct {
	EventID   uuid.UUID `json:"event_id" yaml:"event_id"`
	SessionID string    `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Time      time.Time `json:"time" yaml:"time"`
}

// TurnEvent reports a turn appended to the log, with its position and whether
// a request was still in flight at that moment.
type TurnEvent struct {
	Type    EventType         `json:"type"`
	Meta    EventMetadata     `json:"meta"`
	Index   int               `json:"index"`
	Turn    conversation.Turn `json:"turn"`
	Pending bool              `json:"pending"`
}

func NewTurnAppendedEvent(sessionID string, index int, turn conversation.Turn, pending bool) *TurnEvent {
	return &TurnEvent{
		Type: EventTypeTurnAppended,
		Meta: EventMetadata{
			EventID:   uuid.New(),
			SessionID: sessionID,
			Time:      time.Now(),
		},
		Index:   index,
		Turn:    turn,
		Pending: pending,
	}
}

func NewTurnEventFromJson(b []byte) (*TurnEvent, error) {
	var e TurnEvent
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, errors.Wrap(err, "could not decode turn event")
	}
	if e.Type != EventTypeTurnAppended {
		return nil, errors.Errorf("unknown event type %q", e.Type)
	}
	return &e, nil
}
