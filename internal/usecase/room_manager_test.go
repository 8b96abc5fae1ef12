package usecase

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/registry"
)

func newTestManager() (*RoomManager, *registry.Registry) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rooms := registry.New()

	return NewRoomManager(logger, rooms), rooms
}

func TestRoomManager_CreateAndJoin(t *testing.T) {
	t.Run("Create then join fills both seats", func(t *testing.T) {
		// Given: a fresh manager
		manager, _ := newTestManager()

		// When: one client creates and another joins
		code, update, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.False(t, update.Snapshot.PlayersReady)
		assert.Equal(t, []string{"conn-x"}, update.Members)

		side, update, err := manager.JoinRoom(code, "conn-o")

		// Then: the joiner is seated as O and the room is ready
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, side)
		assert.True(t, update.Snapshot.PlayersReady)
		assert.Equal(t, []string{"conn-x", "conn-o"}, update.Members)
	})

	t.Run("Join is case-insensitive on the room code", func(t *testing.T) {
		manager, _ := newTestManager()
		code, _, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)

		// When: joining with a lowercased code
		lower := ""
		for _, r := range code {
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			lower += string(r)
		}

		_, _, err = manager.JoinRoom(lower, "conn-o")

		require.NoError(t, err)
	})

	t.Run("Join fails when the room is full", func(t *testing.T) {
		manager, _ := newTestManager()
		code, _, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(code, "conn-o")
		require.NoError(t, err)

		_, _, err = manager.JoinRoom(code, "conn-late")

		require.ErrorIs(t, err, apperror.ErrRoomFull)
	})

	t.Run("Join fails for an unknown code", func(t *testing.T) {
		manager, _ := newTestManager()

		_, _, err := manager.JoinRoom("ZZZZZZ", "conn-o")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Join fails for an empty code", func(t *testing.T) {
		manager, _ := newTestManager()

		_, _, err := manager.JoinRoom("", "conn-o")

		require.ErrorIs(t, err, apperror.ErrInvalidRoomCode)
	})
}

func TestRoomManager_MakeMove(t *testing.T) {
	t.Run("Moves alternate between the seated players", func(t *testing.T) {
		// Given: a ready room
		manager, _ := newTestManager()
		code, _, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(code, "conn-o")
		require.NoError(t, err)

		// When: X plays the center and O answers
		update, err := manager.MakeMove(code, "conn-x", 112)
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, update.Snapshot.Board[112])
		assert.Equal(t, entity.PlayerO, update.Snapshot.Turn)

		update, err = manager.MakeMove(code, "conn-o", 0)

		// Then: it is X's turn again
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, update.Snapshot.Board[0])
		assert.Equal(t, entity.PlayerX, update.Snapshot.Turn)
	})

	t.Run("Rejects a move out of turn without changing state", func(t *testing.T) {
		manager, rooms := newTestManager()
		code, _, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(code, "conn-o")
		require.NoError(t, err)

		// When: O moves while it is X's turn
		_, err = manager.MakeMove(code, "conn-o", 5)

		// Then: the move is rejected and the board stayed empty
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)

		room, err := rooms.Get(code)
		require.NoError(t, err)
		assert.Equal(t, entity.NewBoard(), room.Board)
		assert.Equal(t, entity.PlayerX, room.Turn)
		assert.Empty(t, room.Winner)
	})

	t.Run("Rejects a move from a connection outside the room", func(t *testing.T) {
		manager, _ := newTestManager()
		code, _, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(code, "conn-o")
		require.NoError(t, err)

		_, err = manager.MakeMove(code, "conn-stranger", 5)

		require.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("Rejects a move in an unknown room", func(t *testing.T) {
		manager, _ := newTestManager()

		_, err := manager.MakeMove("ZZZZZZ", "conn-x", 5)

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Winning run is reported in the snapshot", func(t *testing.T) {
		// Given: X one stone short of completing row 0
		manager, _ := newTestManager()
		code, _, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(code, "conn-o")
		require.NoError(t, err)

		for i := 0; i < 4; i++ {
			_, err = manager.MakeMove(code, "conn-x", i)
			require.NoError(t, err)
			_, err = manager.MakeMove(code, "conn-o", 100+i)
			require.NoError(t, err)
		}

		// When: X completes the run
		update, err := manager.MakeMove(code, "conn-x", 4)

		// Then: the snapshot carries winner and win line
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, update.Snapshot.Winner)
		assert.Equal(t, []int{0, 1, 2, 3, 4}, update.Snapshot.WinLine)
	})

	t.Run("Concurrent moves on one cell apply exactly once", func(t *testing.T) {
		// Given: a ready room and many racing attempts by X
		manager, rooms := newTestManager()
		code, _, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(code, "conn-o")
		require.NoError(t, err)

		const attempts = 64

		var wg sync.WaitGroup
		errs := make([]error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(slot int) {
				defer wg.Done()
				_, errs[slot] = manager.MakeMove(code, "conn-x", 5)
			}(i)
		}
		wg.Wait()

		// Then: exactly one attempt won the race
		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			}
		}
		assert.Equal(t, 1, succeeded)

		room, err := rooms.Get(code)
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, room.Board[5])
		assert.Equal(t, entity.PlayerO, room.Turn)
	})
}

func TestRoomManager_ResetRoom(t *testing.T) {
	t.Run("Reset clears the match and keeps the seats", func(t *testing.T) {
		// Given: a room with some moves played
		manager, rooms := newTestManager()
		code, _, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(code, "conn-o")
		require.NoError(t, err)
		_, err = manager.MakeMove(code, "conn-x", 112)
		require.NoError(t, err)

		// When: resetting
		update, err := manager.ResetRoom(code, "conn-o")

		// Then: fresh board, X to move, both players still seated
		require.NoError(t, err)
		assert.Equal(t, entity.NewBoard(), update.Snapshot.Board)
		assert.Equal(t, entity.PlayerX, update.Snapshot.Turn)
		assert.Nil(t, update.Snapshot.LastMove)
		assert.Empty(t, update.Snapshot.Winner)
		assert.Empty(t, update.Snapshot.WinLine)
		assert.True(t, update.Snapshot.PlayersReady)

		room, err := rooms.Get(code)
		require.NoError(t, err)
		assert.Equal(t, "conn-x", room.Players[entity.PlayerX])
		assert.Equal(t, "conn-o", room.Players[entity.PlayerO])
	})

	t.Run("Reset requires room membership", func(t *testing.T) {
		manager, _ := newTestManager()
		code, _, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)

		_, err = manager.ResetRoom(code, "conn-stranger")

		require.ErrorIs(t, err, apperror.ErrNotInRoom)
	})
}

func TestRoomManager_LeaveRoom(t *testing.T) {
	t.Run("First leave restarts the match for the remaining player", func(t *testing.T) {
		// Given: a game in progress
		manager, rooms := newTestManager()
		code, _, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(code, "conn-o")
		require.NoError(t, err)
		_, err = manager.MakeMove(code, "conn-x", 112)
		require.NoError(t, err)

		// When: X leaves
		result, err := manager.LeaveRoom(code, "conn-x")

		// Then: the room survives, reset, with only O seated
		require.NoError(t, err)
		assert.False(t, result.Deleted)
		assert.Equal(t, entity.NewBoard(), result.Update.Snapshot.Board)
		assert.Equal(t, entity.PlayerX, result.Update.Snapshot.Turn)
		assert.False(t, result.Update.Snapshot.PlayersReady)
		assert.Equal(t, []string{"conn-o"}, result.Update.Members)

		room, err := rooms.Get(code)
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, room.SeatOf("conn-o"))
		assert.Empty(t, room.Players[entity.PlayerX])
	})

	t.Run("Last leave deletes the room", func(t *testing.T) {
		// Given: both players seated
		manager, rooms := newTestManager()
		code, _, err := manager.CreateRoom("conn-x")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(code, "conn-o")
		require.NoError(t, err)

		// When: both leave in turn
		result, err := manager.LeaveRoom(code, "conn-x")
		require.NoError(t, err)
		require.False(t, result.Deleted)

		result, err = manager.LeaveRoom(code, "conn-o")
		require.NoError(t, err)
		assert.True(t, result.Deleted)

		// Then: the code is gone and joining it fails
		assert.Equal(t, 0, rooms.Len())

		_, _, err = manager.JoinRoom(code, "conn-late")
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Leave of an unknown room fails", func(t *testing.T) {
		manager, _ := newTestManager()

		_, err := manager.LeaveRoom("ZZZZZZ", "conn-x")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}
