package registry

import (
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const (
	codeLength   = 6
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Registry - owns the process-wide map of live rooms. Rooms live until
// both seats are vacant; there is no persistence and no expiry by time.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
}

func New() *Registry {
	return &Registry{
		rooms: make(map[string]*entity.Room),
	}
}

// Create - allocates a room under a fresh unique code with the caller
// seated as X.
func (that *Registry) Create(connID string) *entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	code := that.generateCode()
	room := entity.NewRoom(code, connID)
	that.rooms[code] = room

	return room
}

func (that *Registry) Get(code string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[code]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

func (that *Registry) Remove(code string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, code)
}

func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// generateCode - draws 6 symbols from the uppercase base36 alphabet,
// resampling until the code is unique among live rooms. Must be called
// under the write lock.
func (that *Registry) generateCode() string {
	for {
		code := randomCode()
		if _, exists := that.rooms[code]; !exists {
			return code
		}
	}
}

func randomCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}

	return string(buf)
}
