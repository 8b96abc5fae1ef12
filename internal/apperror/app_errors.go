package apperror

import "errors"

// Sentinel errors for room operations. The messages double as the
// client-facing reasons sent in error acknowledgements, so they must
// stay stable.
var (
	ErrInvalidRoomCode    = errors.New("invalid room code")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room full")
	ErrNotInRoom          = errors.New("not in this room")
	ErrInvalidMoveIndex   = errors.New("invalid move index")
	ErrWaitingForOpponent = errors.New("waiting for opponent")
	ErrGameFinished       = errors.New("game already finished")
	ErrCellOccupied       = errors.New("cell occupied")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrSideUndetermined   = errors.New("side undetermined")
)

// Sentinel errors for the account API.
var (
	ErrNotFound           = errors.New("not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var clientFacing = []error{
	ErrInvalidRoomCode,
	ErrRoomNotFound,
	ErrRoomFull,
	ErrNotInRoom,
	ErrInvalidMoveIndex,
	ErrWaitingForOpponent,
	ErrGameFinished,
	ErrCellOccupied,
	ErrNotYourTurn,
	ErrSideUndetermined,
}

// Reason - maps err to the fixed client-facing reason string.
// The second return is false when err does not wrap any known sentinel,
// in which case the caller should not leak err to the client.
func Reason(err error) (string, bool) {
	for _, sentinel := range clientFacing {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}

	return "", false
}
