package rooms

// Outbound event names, as they appear on the wire.
const (
	EventOpponentJoined     = "opponentJoined"
	EventMove               = "move"
	EventPlayerDisconnected = "playerDisconnected"
	EventCloseRoom          = "closeRoom"
)

// Outbound is an event the transport must deliver to every connection in To.
// Coordinator operations return these instead of writing to connections, so
// delivery happens after the room state has changed.
type Outbound struct {
	To      []string
	Event   string
	Payload any
}

type PayloadRoom struct {
	RoomID string `json:"roomId"`
}
