package ws

import (
	"context"
	"encoding/json"

	"github.com/judgegodwins/chess-relay/rooms"
)

// Event is the envelope of every websocket frame in both directions. Replies
// to a request reuse its type and trace id.
type Event struct {
	Type    string          `json:"type"`
	TraceID string          `json:"trace_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

type EventHandler func(ctx context.Context, evt Event, c *Client) error

const (
	EventSetName    = "setName"
	EventCreateRoom = "createRoom"
	EventJoinRoom   = "joinRoom"
	EventMove       = rooms.EventMove
	EventCloseRoom  = rooms.EventCloseRoom
	EventError      = "error"
)

type PayloadError struct {
	Message string `json:"message"`
}

type PayloadSetName struct {
	Name string `json:"name"`
}

type PayloadRoom = rooms.PayloadRoom

type PayloadMove struct {
	RoomID string          `json:"roomId"`
	Move   json.RawMessage `json:"move" validate:"required"`
}

// PayloadJoinFailed is the joinRoom reply when the room cannot be entered.
type PayloadJoinFailed struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func NewEvent(evtType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)

	if err != nil {
		return Event{}, err
	}

	return NewEventStruct(evtType, b, ""), nil
}

// NewReply answers req with payload.
func NewReply(req Event, payload any) (Event, error) {
	evt, err := NewEvent(req.Type, payload)

	if err != nil {
		return Event{}, err
	}

	evt.TraceID = req.TraceID

	return evt, nil
}

func NewErrorEvent(traceId, message string) (Event, error) {
	b, err := json.Marshal(PayloadError{Message: message})

	if err != nil {
		return Event{}, err
	}

	return NewEventStruct(EventError, b, traceId), nil
}

func NewEventStruct(evtType string, payload []byte, traceId string) Event {
	return Event{
		Type:    evtType,
		TraceID: traceId,
		Payload: payload,
	}
}
