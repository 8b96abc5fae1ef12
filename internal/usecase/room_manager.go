package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/registry"
)

// RoomUpdate - the result of a successful room mutation: the snapshot
// to broadcast and the connection identifiers joined to the room.
type RoomUpdate struct {
	Snapshot *entity.RoomSnapshot
	Members  []string
}

// LeaveResult - outcome of a leave or disconnect. When Deleted is true
// the room is gone and there is nobody left to notify; otherwise Update
// carries the reset state for the remaining player.
type LeaveResult struct {
	Deleted bool
	Update  *RoomUpdate
}

// RoomManager - serializes all mutations of one room behind its lock
// and keeps the registry consistent with seat occupancy.
type RoomManager struct {
	logger *slog.Logger
	rooms  *registry.Registry
}

func NewRoomManager(logger *slog.Logger, rooms *registry.Registry) *RoomManager {
	return &RoomManager{
		logger: logger,
		rooms:  rooms,
	}
}

// CreateRoom - allocates a room with the caller seated as X.
func (that *RoomManager) CreateRoom(connID string) (string, *RoomUpdate, error) {
	room := that.rooms.Create(connID)

	room.Lock()
	defer room.Unlock()

	that.logger.Info("room created", "room", room.Code)

	return room.Code, updateOf(room), nil
}

// JoinRoom - seats the caller on the first vacant side.
func (that *RoomManager) JoinRoom(code, connID string) (string, *RoomUpdate, error) {
	room, err := that.lookup(code)
	if err != nil {
		return "", nil, err
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed() {
		return "", nil, apperror.ErrRoomNotFound
	}

	side, ok := room.VacantSeat()
	if !ok {
		return "", nil, apperror.ErrRoomFull
	}

	room.Players[side] = connID

	that.logger.Info("player joined room", "room", room.Code, "side", side)

	return side, updateOf(room), nil
}

// MakeMove - applies one validated stone placement. Rejections leave
// the room untouched.
func (that *RoomManager) MakeMove(code, connID string, index int) (*RoomUpdate, error) {
	room, err := that.lookup(code)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed() {
		return nil, apperror.ErrRoomNotFound
	}

	side := room.SeatOf(connID)
	if side == "" {
		return nil, apperror.ErrNotInRoom
	}

	if err = gomoku.MakeMove(room, side, index); err != nil {
		return nil, fmt.Errorf("move rejected: %w", err)
	}

	if room.Winner != entity.EmptyCell {
		that.logger.Info("game finished", "room", room.Code, "winner", room.Winner)
	}

	return updateOf(room), nil
}

// ResetRoom - forced restart; clears the match state, seats stay.
func (that *RoomManager) ResetRoom(code, connID string) (*RoomUpdate, error) {
	room, err := that.lookup(code)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed() {
		return nil, apperror.ErrRoomNotFound
	}

	if room.SeatOf(connID) == "" {
		return nil, apperror.ErrNotInRoom
	}

	room.Reset()

	that.logger.Info("room reset", "room", room.Code)

	return updateOf(room), nil
}

// LeaveRoom - vacates the caller's seat. The last player out deletes
// the room; otherwise the match restarts for whoever stayed.
func (that *RoomManager) LeaveRoom(code, connID string) (*LeaveResult, error) {
	room, err := that.lookup(code)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed() {
		return nil, apperror.ErrRoomNotFound
	}

	room.Vacate(connID)

	if room.Vacant() {
		room.Close()
		that.rooms.Remove(room.Code)

		that.logger.Info("room deleted", "room", room.Code)

		return &LeaveResult{Deleted: true}, nil
	}

	room.Reset()

	that.logger.Info("player left room", "room", room.Code)

	return &LeaveResult{Update: updateOf(room)}, nil
}

func (that *RoomManager) lookup(code string) (*entity.Room, error) {
	if code == "" {
		return nil, apperror.ErrInvalidRoomCode
	}

	room, err := that.rooms.Get(strings.ToUpper(code))
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// updateOf - snapshots the room under its lock, held by the caller.
func updateOf(room *entity.Room) *RoomUpdate {
	return &RoomUpdate{
		Snapshot: room.Snapshot(),
		Members:  room.MemberIDs(),
	}
}
