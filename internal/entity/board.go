package entity

const (
	BoardSize = 15
	CellCount = BoardSize * BoardSize
	WinStreak = 5

	PlayerX = "X"
	PlayerO = "O"

	WinnerDraw = "draw"

	EmptyCell = ""
)

// Board is a flat row-major sequence of 15x15 cells, each holding
// EmptyCell, PlayerX or PlayerO.
type Board []string

func NewBoard() Board {
	board := make(Board, CellCount)
	for i := range board {
		board[i] = EmptyCell
	}

	return board
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that Board) Copy() Board {
	board := make(Board, len(that))
	copy(board, that)

	return board
}

// ToggleMark - returns the opposing mark.
func ToggleMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}

	return PlayerX
}
