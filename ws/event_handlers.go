package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/judgegodwins/chess-relay/http_utils"
	"github.com/judgegodwins/chess-relay/rooms"
)

func decodePayload(e Event, v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("invalid %v payload: %w", e.Type, err)
	}

	return nil
}

// SetName stores the display name used when the client enters a room.
func SetName(ctx context.Context, e Event, c *Client) error {
	var payload PayloadSetName

	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	c.manager.names.SetDisplayName(c.ID, payload.Name)

	return nil
}

// CreateRoom opens a room hosted by the client and replies with its id.
func CreateRoom(ctx context.Context, e Event, c *Client) error {
	roomID, err := c.manager.coordinator.CreateRoom(c.ID)

	if err != nil {
		return err
	}

	return c.reply(e, PayloadRoom{RoomID: roomID})
}

// JoinRoom replies with the room snapshot, or with {error, message} when the
// room cannot be entered, and tells the host who joined.
func JoinRoom(ctx context.Context, e Event, c *Client) error {
	var payload PayloadRoom

	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	snap, outs, err := c.manager.coordinator.JoinRoom(c.ID, payload.RoomID)

	if err != nil {
		return c.reply(e, PayloadJoinFailed{
			Error:   true,
			Message: joinErrorMessage(err),
		})
	}

	// the room is full either way, so the host hears about it even when the
	// joiner is gone
	err = c.reply(e, snap)
	c.manager.dispatch(outs)

	return err
}

func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		return "Room does not exist"
	case errors.Is(err, rooms.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, rooms.ErrAlreadyInRoom):
		return "You are already in a room"
	default:
		return err.Error()
	}
}

// RelayMove forwards the move to the opponent without looking at it.
func RelayMove(ctx context.Context, e Event, c *Client) error {
	var payload PayloadMove

	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	if response, failed := http_utils.ValidateStruct(c.manager.validate, payload); failed {
		return fmt.Errorf("invalid move payload: %v", strings.Join(response.Errors, "; "))
	}

	outs, err := c.manager.coordinator.RelayMove(c.ID, payload.RoomID, payload.Move)

	if err != nil {
		return err
	}

	c.manager.dispatch(outs)

	return nil
}

// CloseRoom ends the game for both players.
func CloseRoom(ctx context.Context, e Event, c *Client) error {
	var payload PayloadRoom

	if err := decodePayload(e, &payload); err != nil {
		return err
	}

	outs, err := c.manager.coordinator.CloseRoom(c.ID, payload.RoomID)

	if err != nil {
		return err
	}

	c.manager.dispatch(outs)

	return nil
}
