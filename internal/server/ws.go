package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/picture-riddle/internal/game"
	httperrors "github.com/gokatarajesh/picture-riddle/pkg/http/errors"
	ws "github.com/gokatarajesh/picture-riddle/pkg/http/ws"
)

// GameSocket streams controller events to WebSocket clients and accepts
// game actions from them.
type GameSocket struct {
	ctrl     *game.Controller
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewGameSocket(ctrl *game.Controller, hub *ws.Hub, upgrader websocket.Upgrader, logger zerolog.Logger) *GameSocket {
	return &GameSocket{
		ctrl:     ctrl,
		hub:      hub,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "game_ws").Logger(),
	}
}

// Broadcast forwards every controller event to the hub. The returned func unsubscribes.
func Broadcast(ctrl *game.Controller, hub *ws.Hub, logger zerolog.Logger) func() {
	return ctrl.Subscribe(func(ev game.Event) {
		msg, err := ws.NewMessage(messageType(ev.Type), ev)
		if err != nil {
			logger.Error().Err(err).Str("event", string(ev.Type)).Msg("encode event")
			return
		}
		_ = hub.BroadcastAll(msg)
	})
}

func messageType(t game.EventType) string {
	switch t {
	case game.EventHint:
		return ws.TypeHintShown
	default:
		return string(t)
	}
}

// HandleWebSocket upgrades the request, sends the current state and serves actions until the peer leaves.
func (s *GameSocket) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	wsConn := ws.NewConnection(conn, s.logger)
	s.hub.Register(wsConn)
	go wsConn.WritePump()

	_ = s.sendState(wsConn, "")

	wsConn.ReadPump(func(msg ws.Message) error {
		return s.handleMessage(wsConn, msg)
	})

	s.hub.Unregister(wsConn.ID)
}

// handleMessage routes incoming WebSocket messages. State changes reach
// every client through Broadcast; only errors and explicit requests are answered directly.
func (s *GameSocket) handleMessage(conn *ws.Connection, msg ws.Message) error {
	switch msg.Type {
	case ws.TypePing:
		return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
	case ws.TypeRequestState:
		return s.sendState(conn, msg.RequestID)
	case ws.TypeStart:
		return s.reply(conn, msg, s.ctrl.Start())
	case ws.TypeRestart:
		s.ctrl.Restart()
		return nil
	case ws.TypeNext:
		return s.reply(conn, msg, s.ctrl.Next())
	case ws.TypeHint:
		s.ctrl.RevealHint()
		return nil
	case ws.TypeAnswer:
		var req ws.AnswerPayload
		if err := msg.Decode(&req); err != nil || req.Option == "" {
			return s.sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid answer payload")
		}
		_, err := s.ctrl.Answer(req.Option)
		return s.reply(conn, msg, err)
	case ws.TypeToggleTheme:
		var req ws.ToggleThemePayload
		if err := msg.Decode(&req); err != nil || req.Theme == "" {
			return s.sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid toggle_theme payload")
		}
		return s.reply(conn, msg, s.ctrl.ToggleTheme(req.Theme))
	default:
		return s.sendError(conn, msg.RequestID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (s *GameSocket) reply(conn *ws.Connection, msg ws.Message, err error) error {
	if err == nil {
		return nil
	}
	code, _ := classify(err)
	return s.sendError(conn, msg.RequestID, code, err.Error())
}

func (s *GameSocket) sendState(conn *ws.Connection, requestID string) error {
	msg, err := ws.NewMessage(ws.TypeState, s.ctrl.State())
	if err != nil {
		return err
	}
	msg.RequestID = requestID
	return conn.Send(msg)
}

func (s *GameSocket) sendError(conn *ws.Connection, requestID, code, message string) error {
	msg, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return err
	}
	msg.RequestID = requestID
	return conn.Send(msg)
}
