package entity

import "sync"

// Room - one active two-player match, identified by a short code.
//
// All mutating operations on a room must run under its embedded mutex;
// moves are check-then-act and are not safe under concurrent access.
// Operations on different rooms are independent.
type Room struct {
	sync.Mutex

	Code     string
	Board    Board
	Turn     string
	LastMove *int
	Winner   string
	WinLine  []int
	Players  map[string]string // side -> connection identifier

	closed bool
}

// RoomSnapshot - the full serialized state of a room, sent as a whole
// on every broadcast. There is no delta protocol.
type RoomSnapshot struct {
	RoomID       string `json:"roomId"`
	Board        Board  `json:"board"`
	Turn         string `json:"turn"`
	LastMove     *int   `json:"lastMove"`
	Winner       string `json:"winner"`
	WinLine      []int  `json:"winLine"`
	PlayersReady bool   `json:"playersReady"`
}

// NewRoom - creates a room with the creator seated as X.
func NewRoom(code, connID string) *Room {
	return &Room{
		Code:    code,
		Board:   NewBoard(),
		Turn:    PlayerX,
		WinLine: []int{},
		Players: map[string]string{
			PlayerX: connID,
		},
	}
}

// Reset - reinitializes the match state while preserving seats.
func (that *Room) Reset() {
	that.Board = NewBoard()
	that.Turn = PlayerX
	that.LastMove = nil
	that.Winner = EmptyCell
	that.WinLine = []int{}
}

func (that *Room) PlayersReady() bool {
	return that.Players[PlayerX] != "" && that.Players[PlayerO] != ""
}

// VacantSeat - returns the first free side, X before O.
func (that *Room) VacantSeat() (string, bool) {
	if that.Players[PlayerX] == "" {
		return PlayerX, true
	}
	if that.Players[PlayerO] == "" {
		return PlayerO, true
	}

	return "", false
}

// SeatOf - returns the side held by connID, or the empty string.
func (that *Room) SeatOf(connID string) string {
	for _, side := range []string{PlayerX, PlayerO} {
		if that.Players[side] == connID && connID != "" {
			return side
		}
	}

	return ""
}

// MemberIDs - connection identifiers of everyone seated, X first.
func (that *Room) MemberIDs() []string {
	ids := make([]string, 0, 2)
	for _, side := range []string{PlayerX, PlayerO} {
		if id := that.Players[side]; id != "" {
			ids = append(ids, id)
		}
	}

	return ids
}

// Vacate - frees the seat held by connID. If connID holds no recorded
// seat, any seat still pointing at it is cleared defensively.
func (that *Room) Vacate(connID string) {
	for _, side := range []string{PlayerX, PlayerO} {
		if that.Players[side] == connID {
			that.Players[side] = ""
		}
	}
}

// Vacant - reports whether both seats are free.
func (that *Room) Vacant() bool {
	return that.Players[PlayerX] == "" && that.Players[PlayerO] == ""
}

// Close - marks the room as removed from the registry. A joiner that
// raced the removal sees the flag and is told the room no longer exists.
func (that *Room) Close() {
	that.closed = true
}

func (that *Room) Closed() bool {
	return that.closed
}

// Snapshot - copies the room state for broadcasting. Must be called
// under the room lock.
func (that *Room) Snapshot() *RoomSnapshot {
	var lastMove *int
	if that.LastMove != nil {
		v := *that.LastMove
		lastMove = &v
	}

	winLine := make([]int, len(that.WinLine))
	copy(winLine, that.WinLine)

	return &RoomSnapshot{
		RoomID:       that.Code,
		Board:        that.Board.Copy(),
		Turn:         that.Turn,
		LastMove:     lastMove,
		Winner:       that.Winner,
		WinLine:      winLine,
		PlayersReady: that.PlayersReady(),
	}
}
