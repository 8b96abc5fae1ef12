package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-backend/internal/usecase"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096

	sendBufferSize = 16

	shutdownTimeout = 5 * time.Second
)

type roomManager interface {
	CreateRoom(connID string) (string, *usecase.RoomUpdate, error)
	JoinRoom(code, connID string) (string, *usecase.RoomUpdate, error)
	MakeMove(code, connID string, index int) (*usecase.RoomUpdate, error)
	ResetRoom(code, connID string) (*usecase.RoomUpdate, error)
	LeaveRoom(code, connID string) (*usecase.LeaveResult, error)
}

// client - one live connection. room and side are the connection's weak
// back-reference to the room it participates in; they are only touched
// from the connection's own read goroutine.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	room string
	side string
}

type Server struct {
	logger *slog.Logger
	rooms  roomManager

	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[string]*client

	handlers map[string]func(*client, json.RawMessage)
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		clients:  make(map[string]*client),
		handlers: make(map[string]func(*client, json.RawMessage)),
	}

	server.handlers[ActionCreateRoom] = server.handleCreateRoom
	server.handlers[ActionJoinRoom] = server.handleJoinRoom
	server.handlers[ActionMakeMove] = server.handleMakeMove
	server.handlers[ActionResetRoom] = server.handleResetRoom
	server.handlers[ActionLeaveRoom] = server.handleLeaveRoom

	return server
}

// Start - starts the WebSocket server and blocks until it stops.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.HandleConnection)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// HandleConnection - upgrades the request and serves the connection
// until it closes. Exported so tests can mount it on their own server.
func (that *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "HandleConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	cl := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}

	that.clientsMu.Lock()
	that.clients[cl.id] = cl
	that.clientsMu.Unlock()

	log.Info("connection established", "connID", cl.id)

	go that.writePump(cl)
	that.readPump(cl)
}

// readPump - reads and dispatches messages until the connection drops,
// then runs the disconnect path.
func (that *Server) readPump(cl *client) {
	log := that.logger.With("method", "readPump", "connID", cl.id)

	defer that.disconnect(cl)

	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("unexpected close", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		handler(cl, message.Payload)
	}
}

// writePump - owns all writes to the connection. Messages are queued on
// the send channel; the ping ticker keeps liveness detection going.
func (that *Server) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case <-cl.done:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// disconnect - unregisters the client and triggers the leave path for
// any room it participated in, even without an explicit leaveRoom.
func (that *Server) disconnect(cl *client) {
	log := that.logger.With("method", "disconnect", "connID", cl.id)

	that.clientsMu.Lock()
	delete(that.clients, cl.id)
	that.clientsMu.Unlock()

	that.leaveCurrentRoom(cl)

	close(cl.done)

	log.Info("connection closed")
}

func (that *Server) send(cl *client, action string, payload any) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "action", action, "error", err)
		return
	}

	select {
	case cl.send <- data:
	default:
		that.logger.Warn("send buffer full, dropping message", "connID", cl.id, "action", action)
	}
}

func (that *Server) sendError(cl *client, action string, reason string) {
	that.send(cl, action, errorAck{Error: reason})
}

// sendToMembers - fans a message out to every given connection that is
// still registered.
func (that *Server) sendToMembers(members []string, action string, payload any) {
	for _, id := range members {
		that.clientsMu.RLock()
		member, ok := that.clients[id]
		that.clientsMu.RUnlock()

		if !ok {
			continue
		}

		that.send(member, action, payload)
	}
}

func (that *Server) broadcastUpdate(update *usecase.RoomUpdate) {
	if update == nil {
		return
	}

	that.sendToMembers(update.Members, ActionRoomUpdate, update.Snapshot)
}
