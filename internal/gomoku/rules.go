package gomoku

import (
	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// directions scanned from each cell: right, down, down-right, down-left.
// The scan order is part of the wire behavior: the first qualifying run
// in raster order decides the reported win line.
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// CheckOutcome - scans the board for a run of five identical marks.
// Returns (mark, winning cell indices) on a win, (WinnerDraw, empty
// line) when the board is full, and ("", nil) while the game continues.
func CheckOutcome(board entity.Board) (string, []int) {
	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			cell := board[row*entity.BoardSize+col]
			if cell == entity.EmptyCell {
				continue
			}

			for _, dir := range directions {
				if line, ok := runFrom(board, cell, row, col, dir); ok {
					return cell, line
				}
			}
		}
	}

	if board.IsFull() {
		return entity.WinnerDraw, []int{}
	}

	return "", nil
}

// runFrom - counts contiguous cells equal to mark starting at (row, col)
// along dir, up to the winning streak length.
func runFrom(board entity.Board, mark string, row, col int, dir [2]int) ([]int, bool) {
	line := []int{row*entity.BoardSize + col}

	for i := 1; i < entity.WinStreak; i++ {
		nextRow := row + dir[0]*i
		nextCol := col + dir[1]*i

		if nextRow < 0 || nextRow >= entity.BoardSize || nextCol < 0 || nextCol >= entity.BoardSize {
			break
		}

		if board[nextRow*entity.BoardSize+nextCol] != mark {
			break
		}

		line = append(line, nextRow*entity.BoardSize+nextCol)
	}

	return line, len(line) >= entity.WinStreak
}

// MakeMove - validates and applies one stone placement for side.
// Every violation is rejected before any state mutation; on success the
// board, lastMove, turn and outcome fields are updated together.
// The caller must hold the room lock.
func MakeMove(room *entity.Room, side string, index int) error {
	if index < 0 || index >= len(room.Board) {
		return apperror.ErrInvalidMoveIndex
	}

	if !room.PlayersReady() {
		return apperror.ErrWaitingForOpponent
	}

	if room.Winner != entity.EmptyCell {
		return apperror.ErrGameFinished
	}

	if room.Board[index] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	if side == "" {
		return apperror.ErrSideUndetermined
	}

	if room.Turn != side {
		return apperror.ErrNotYourTurn
	}

	room.Board[index] = side
	room.LastMove = &index

	if winner, line := CheckOutcome(room.Board); winner != "" {
		room.Winner = winner
		room.WinLine = line
		return nil
	}

	room.Turn = entity.ToggleMark(side)
	room.WinLine = []int{}
	room.Winner = entity.EmptyCell

	return nil
}
