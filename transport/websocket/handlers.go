package websocket

import (
	"encoding/json"
	"strings"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const opponentLeftMessage = "Your opponent left the room"

func (that *Server) handleCreateRoom(cl *client, _ json.RawMessage) {
	log := that.logger.With("method", "handleCreateRoom", "connID", cl.id)

	code, update, err := that.rooms.CreateRoom(cl.id)
	if err != nil {
		log.Error("failed to create room", "error", err)
		that.ackError(cl, ActionCreateRoom, err)
		return
	}

	cl.room = code
	cl.side = entity.PlayerX

	that.send(cl, ActionCreateRoom, createRoomAck{RoomID: code, Side: entity.PlayerX})
	that.broadcastUpdate(update)
}

func (that *Server) handleJoinRoom(cl *client, payload json.RawMessage) {
	log := that.logger.With("method", "handleJoinRoom", "connID", cl.id)

	var req roomRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.RoomID == "" {
		that.sendError(cl, ActionJoinRoom, apperror.ErrInvalidRoomCode.Error())
		return
	}

	side, update, err := that.rooms.JoinRoom(req.RoomID, cl.id)
	if err != nil {
		log.Info("join rejected", "room", req.RoomID, "error", err)
		that.ackError(cl, ActionJoinRoom, err)
		return
	}

	cl.room = update.Snapshot.RoomID
	cl.side = side

	that.send(cl, ActionJoinRoom, joinRoomAck{Side: side, PlayersReady: update.Snapshot.PlayersReady})
	that.broadcastUpdate(update)
}

func (that *Server) handleMakeMove(cl *client, payload json.RawMessage) {
	log := that.logger.With("method", "handleMakeMove", "connID", cl.id)

	var req moveRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.RoomID == "" {
		that.sendError(cl, ActionMakeMove, apperror.ErrInvalidRoomCode.Error())
		return
	}

	if req.Index == nil {
		that.sendError(cl, ActionMakeMove, apperror.ErrInvalidMoveIndex.Error())
		return
	}

	update, err := that.rooms.MakeMove(req.RoomID, cl.id, *req.Index)
	if err != nil {
		log.Info("move rejected", "room", req.RoomID, "error", err)
		that.ackError(cl, ActionMakeMove, err)
		return
	}

	that.send(cl, ActionMakeMove, okAck{OK: true})
	that.broadcastUpdate(update)
}

func (that *Server) handleResetRoom(cl *client, payload json.RawMessage) {
	log := that.logger.With("method", "handleResetRoom", "connID", cl.id)

	var req roomRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.RoomID == "" {
		that.sendError(cl, ActionResetRoom, apperror.ErrInvalidRoomCode.Error())
		return
	}

	update, err := that.rooms.ResetRoom(req.RoomID, cl.id)
	if err != nil {
		log.Info("reset rejected", "room", req.RoomID, "error", err)
		that.ackError(cl, ActionResetRoom, err)
		return
	}

	that.send(cl, ActionResetRoom, okAck{OK: true})
	that.broadcastUpdate(update)
}

// handleLeaveRoom - explicit departure. There is no acknowledgement for
// leaving; failures are only logged.
func (that *Server) handleLeaveRoom(cl *client, payload json.RawMessage) {
	var req roomRequest
	if len(payload) > 0 {
		// payload is optional; a malformed one falls back to the tracked room
		_ = json.Unmarshal(payload, &req)
	}

	roomID := req.RoomID
	if roomID == "" {
		roomID = cl.room
	}

	if roomID == "" {
		return
	}

	that.leaveRoom(cl, roomID)
}

// leaveCurrentRoom - the implicit leave path taken on disconnect.
func (that *Server) leaveCurrentRoom(cl *client) {
	if cl.room == "" {
		return
	}

	that.leaveRoom(cl, cl.room)
}

func (that *Server) leaveRoom(cl *client, roomID string) {
	log := that.logger.With("method", "leaveRoom", "connID", cl.id, "room", roomID)

	result, err := that.rooms.LeaveRoom(roomID, cl.id)
	if err != nil {
		log.Info("leave ignored", "error", err)
		return
	}

	if strings.EqualFold(roomID, cl.room) {
		cl.room = ""
		cl.side = ""
	}

	if result.Deleted {
		return
	}

	// a single-player departure restarts the match for whoever stayed
	that.sendToMembers(result.Update.Members, ActionOpponentLeft, opponentLeftMessage)
	that.broadcastUpdate(result.Update)
}

// ackError - answers the caller with the fixed client-facing reason, or
// a generic one when the failure is internal.
func (that *Server) ackError(cl *client, action string, err error) {
	reason, ok := apperror.Reason(err)
	if !ok {
		reason = "internal error"
	}

	that.sendError(cl, action, reason)
}
