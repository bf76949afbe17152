package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vytor/timestrainer/internal/errors"
	"github.com/vytor/timestrainer/internal/game"
	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/services"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 30 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 1024
	wsSendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Client commands on the game stream.
const (
	wsActionView      = "view"
	wsActionStart     = "start"
	wsActionSetAnswer = "set_answer"
	wsActionAnswer    = "answer"
	wsActionChoice    = "choice"
	wsActionReset     = "reset"
)

type wsCommand struct {
	Action   string                 `json:"action"`
	Answer   string                 `json:"answer,omitempty"`
	Value    *int                   `json:"value,omitempty"`
	Settings *services.StartRequest `json:"settings,omitempty"`
}

type wsMessage struct {
	Type    string        `json:"type"`
	View    *game.View    `json:"view,omitempty"`
	Outcome *game.Outcome `json:"outcome,omitempty"`
	Error   *errorBody    `json:"error,omitempty"`
}

// handleGameStream pushes the player's view every tick and accepts commands.
func (s *Server) handleGameStream(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).WithPrefix("ws")
	playerID := playerFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Warn("websocket upgrade failed: %v", err)
		return
	}
	log.Info("stream opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan wsMessage, wsSendBuffer)
	go s.readCommands(ctx, cancel, conn, playerID, send)
	s.writeUpdates(ctx, conn, playerID, send)

	log.Info("stream closed")
}

// readCommands runs until the connection fails, then cancels the stream.
func (s *Server) readCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, playerID string, send chan<- wsMessage) {
	defer cancel()
	log := logger.FromContext(ctx).WithPrefix("ws")

	conn.SetReadLimit(wsMaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("read failed: %v", err)
			}
			return
		}

		var cmd wsCommand
		var msg wsMessage
		if err := json.Unmarshal(data, &cmd); err != nil {
			msg = errorMessage(errors.NewBadRequestError("invalid command"))
		} else {
			msg = s.dispatch(ctx, playerID, cmd)
		}

		select {
		case send <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, playerID string, cmd wsCommand) wsMessage {
	logger.FromContext(ctx).Debug("command: %s", cmd.Action)

	var (
		view game.View
		out  *game.Outcome
		err  error
	)
	switch cmd.Action {
	case wsActionView:
		view = s.GameService.Current(ctx, playerID)
	case wsActionStart:
		var req services.StartRequest
		if cmd.Settings != nil {
			req = *cmd.Settings
		}
		view, err = s.GameService.Start(ctx, playerID, req)
	case wsActionSetAnswer:
		view, err = s.GameService.SetAnswer(ctx, playerID, cmd.Answer)
	case wsActionAnswer:
		var o game.Outcome
		view, o, err = s.GameService.SubmitAnswer(ctx, playerID, cmd.Answer)
		out = &o
	case wsActionChoice:
		if cmd.Value == nil {
			return errorMessage(errors.NewValidationError("value", "is required"))
		}
		var o game.Outcome
		view, o, err = s.GameService.SubmitChoice(ctx, playerID, *cmd.Value)
		out = &o
	case wsActionReset:
		view = s.GameService.Reset(ctx, playerID)
	default:
		return errorMessage(errors.NewBadRequestError("unknown action: " + cmd.Action))
	}

	if err != nil {
		return errorMessage(err)
	}
	return wsMessage{Type: "view", View: &view, Outcome: out}
}

// writeUpdates owns every write on conn.
func (s *Server) writeUpdates(ctx context.Context, conn *websocket.Conn, playerID string, send <-chan wsMessage) {
	log := logger.FromContext(ctx).WithPrefix("ws")
	ticker := time.NewTicker(s.pushInterval())
	ping := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
		conn.Close()
	}()

	write := func(msg wsMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug("write failed: %v", err)
			return false
		}
		return true
	}

	view := s.GameService.Current(ctx, playerID)
	if !write(wsMessage{Type: "view", View: &view}) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-send:
			if !write(msg) {
				return
			}
		case <-ticker.C:
			view := s.GameService.Current(ctx, playerID)
			if !write(wsMessage{Type: "view", View: &view}) {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorMessage(err error) wsMessage {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}
	return wsMessage{Type: "error", Error: &errorBody{Code: appErr.Code, Message: appErr.Message}}
}
