// Package rooms pairs connections into two-player rooms and decides who
// receives which event. It never writes to a connection itself: every
// operation returns the events the transport has to deliver.
package rooms

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Directory resolves the display name of a connection.
type Directory interface {
	Lookup(connID string) (string, bool)
	Remove(connID string)
}

// Coordinator owns the set of active rooms.
//
// Locking: each room has its own mutex guarding its players and state. c.mu
// only guards the rooms and members maps and is held briefly. A room mutex
// may be held while taking c.mu, never the other way round.
type Coordinator struct {
	directory Directory
	logger    *zap.Logger
	newID     func() string

	mu      sync.RWMutex
	rooms   map[string]*room
	members map[string][]string // connection id -> ids of active rooms it plays in
}

type Option func(*Coordinator)

// WithIDGenerator replaces the uuid based room id generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Coordinator) {
		c.newID = fn
	}
}

func NewCoordinator(directory Directory, logger *zap.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		directory: directory,
		logger:    logger,
		newID:     uuid.NewString,
		rooms:     make(map[string]*room),
		members:   make(map[string][]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CreateRoom opens a room with connID as its only player and returns the
// room id.
func (c *Coordinator) CreateRoom(connID string) (string, error) {
	host := c.playerFor(connID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.members[connID]) > 0 {
		return "", ErrAlreadyInRoom
	}

	id := c.newID()
	for c.rooms[id] != nil {
		c.logger.Warn("room id collision, retrying", zap.String("room_id", id))
		id = c.newID()
	}

	c.rooms[id] = newRoom(id, host)
	c.members[connID] = append(c.members[connID], id)

	c.logger.Debug("room created", zap.String("room_id", id), zap.String("conn_id", connID))

	return id, nil
}

// JoinRoom admits connID as the second player of roomID. The returned
// snapshot lists both players in join order; the same snapshot is sent to
// the host as an opponentJoined event.
func (c *Coordinator) JoinRoom(connID, roomID string) (RoomSnapshot, []Outbound, error) {
	player := c.playerFor(connID)

	r, ok := c.room(roomID)
	if !ok {
		return RoomSnapshot{}, nil, ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed() {
		return RoomSnapshot{}, nil, ErrRoomNotFound
	}

	if err := c.admit(r, player); err != nil {
		return RoomSnapshot{}, nil, err
	}

	snap := r.snapshot()

	c.logger.Debug("room joined",
		zap.String("room_id", roomID),
		zap.String("conn_id", connID),
		zap.Stringer("state", r.state),
	)

	return snap, []Outbound{{
		To:      r.others(connID),
		Event:   EventOpponentJoined,
		Payload: snap,
	}}, nil
}

// RelayMove forwards move untouched to every other member of roomID.
func (c *Coordinator) RelayMove(connID, roomID string, move json.RawMessage) ([]Outbound, error) {
	r, ok := c.room(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed() {
		return nil, ErrRoomNotFound
	}

	if _, ok := r.member(connID); !ok {
		return nil, ErrNotInRoom
	}

	to := r.others(connID)
	if len(to) == 0 {
		return nil, nil
	}

	return []Outbound{{
		To:      to,
		Event:   EventMove,
		Payload: move,
	}}, nil
}

// CloseRoom tears roomID down on request of one of its members and tells the
// others. Closing a room that no longer exists is not an error.
func (c *Coordinator) CloseRoom(connID, roomID string) ([]Outbound, error) {
	r, ok := c.room(roomID)
	if !ok {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed() {
		return nil, nil
	}

	if _, ok := r.member(connID); !ok {
		return nil, ErrNotInRoom
	}

	to := r.others(connID)
	c.closeLocked(r)

	c.logger.Debug("room closed", zap.String("room_id", roomID), zap.String("conn_id", connID))

	if len(to) == 0 {
		return nil, nil
	}

	return []Outbound{{
		To:      to,
		Event:   EventCloseRoom,
		Payload: PayloadRoom{RoomID: roomID},
	}}, nil
}

// HandleDisconnect closes every room connID plays in, tells the remaining
// players who left and forgets the connection's display name. Calling it
// again for the same connection produces no events.
func (c *Coordinator) HandleDisconnect(connID string) []Outbound {
	c.mu.RLock()
	joined := make([]*room, 0, len(c.members[connID]))
	for _, id := range c.members[connID] {
		if r, ok := c.rooms[id]; ok {
			joined = append(joined, r)
		}
	}
	c.mu.RUnlock()

	var outs []Outbound

	for _, r := range joined {
		if out, ok := c.dropPlayer(r, connID); ok {
			outs = append(outs, out)
		}
	}

	c.directory.Remove(connID)

	return outs
}

func (c *Coordinator) dropPlayer(r *room, connID string) (Outbound, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed() {
		return Outbound{}, false
	}

	departed, ok := r.member(connID)
	if !ok {
		return Outbound{}, false
	}

	to := r.others(connID)
	c.closeLocked(r)

	c.logger.Info("room closed by disconnect",
		zap.String("room_id", r.id),
		zap.String("conn_id", connID),
		zap.Int("notified", len(to)),
	)

	if len(to) == 0 {
		return Outbound{}, false
	}

	return Outbound{
		To:      to,
		Event:   EventPlayerDisconnected,
		Payload: departed,
	}, true
}

// Snapshot returns the current players of an active room.
func (c *Coordinator) Snapshot(roomID string) (RoomSnapshot, error) {
	r, ok := c.room(roomID)
	if !ok {
		return RoomSnapshot{}, ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed() {
		return RoomSnapshot{}, ErrRoomNotFound
	}

	return r.snapshot(), nil
}

// State reports the lifecycle state of roomID. Unknown ids are reported as
// closed since closed rooms are forgotten.
func (c *Coordinator) State(roomID string) State {
	r, ok := c.room(roomID)
	if !ok {
		return StateClosed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// Len is the number of active rooms.
func (c *Coordinator) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.rooms)
}

func (c *Coordinator) room(roomID string) (*room, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.rooms[roomID]
	return r, ok
}

// admit adds player to r and records the membership in one step, so a
// connection never ends up in two rooms. r.mu must be held.
func (c *Coordinator) admit(r *room, player Player) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := r.member(player.ID); ok || len(c.members[player.ID]) > 0 {
		return ErrAlreadyInRoom
	}

	if err := r.admit(player); err != nil {
		return err
	}

	c.members[player.ID] = append(c.members[player.ID], r.id)

	return nil
}

func (c *Coordinator) playerFor(connID string) Player {
	name, _ := c.directory.Lookup(connID)

	return Player{
		ID:   connID,
		Name: name,
	}
}

// closeLocked marks r closed and removes it from the active set along with
// the membership entries of its players. r.mu must be held.
func (c *Coordinator) closeLocked(r *room) {
	r.state = StateClosed

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.rooms, r.id)

	for _, p := range r.players {
		ids := c.members[p.ID]

		if i := slices.Index(ids, r.id); i >= 0 {
			ids = slices.Delete(ids, i, i+1)
		}

		if len(ids) == 0 {
			delete(c.members, p.ID)
			continue
		}

		c.members[p.ID] = ids
	}
}
