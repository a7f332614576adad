package rooms

import (
	"sync"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// MaxPlayers is the capacity of a room.
const MaxPlayers = 2

type State int

const (
	StateOpenWaiting State = iota // 0
	StateOpenFull                 // 1
	StateClosed                   // 2
)

func (s State) String() string {
	return []string{"open_waiting", "open_full", "closed"}[s]
}

// Player is a copy of a connection's identity taken when it entered the room.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type RoomSnapshot struct {
	RoomID  string   `json:"roomId"`
	Players []Player `json:"players"`
}

// Full reports whether the snapshot was taken from a room at capacity.
func (s RoomSnapshot) Full() bool {
	return len(s.Players) >= MaxPlayers
}

type room struct {
	mu      sync.Mutex
	id      string
	players []Player
	state   State
}

func newRoom(id string, host Player) *room {
	return &room{
		id:      id,
		players: []Player{host},
		state:   StateOpenWaiting,
	}
}

// The methods below expect r.mu to be held.

func (r *room) closed() bool {
	return r.state == StateClosed
}

func (r *room) member(connID string) (Player, bool) {
	i := slices.IndexFunc(r.players, func(p Player) bool {
		return p.ID == connID
	})

	if i < 0 {
		return Player{}, false
	}

	return r.players[i], true
}

func (r *room) admit(p Player) error {
	if len(r.players) >= MaxPlayers {
		return ErrRoomFull
	}

	r.players = append(r.players, p)

	if len(r.players) == MaxPlayers {
		r.state = StateOpenFull
	}

	return nil
}

// others returns the ids of every member except connID, in join order.
func (r *room) others(connID string) []string {
	return lo.FilterMap(r.players, func(p Player, _ int) (string, bool) {
		return p.ID, p.ID != connID
	})
}

func (r *room) snapshot() RoomSnapshot {
	return RoomSnapshot{
		RoomID:  r.id,
		Players: slices.Clone(r.players),
	}
}
