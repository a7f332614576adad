package rooms

import "errors"

var (
	// ErrRoomNotFound is returned for room ids that are unknown or already closed.
	ErrRoomNotFound = errors.New("room does not exist")
	// ErrRoomFull is returned when a join targets a room that has two players.
	ErrRoomFull = errors.New("room is full")
	// ErrAlreadyInRoom is returned when a connection that is a member of an
	// active room tries to create or join another one.
	ErrAlreadyInRoom = errors.New("already a member of a room")
	// ErrNotInRoom is returned when a connection acts on a room it is not part of.
	ErrNotInRoom = errors.New("not a member of this room")
)
