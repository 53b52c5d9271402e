package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"genquiz-service/internal/app"
	"genquiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler streams the running play or preview engine to the host screen.
type WSHandler struct {
	ws       *app.Workspace
	upgrader websocket.Upgrader
}

func NewWSHandler(ws *app.Workspace) *WSHandler {
	return &WSHandler{
		ws: ws,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and relays engine state until the run finishes
// or the client goes away. With role=participant the client gets its own run
// over the live session and its answers are recorded under the name parameter.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	var (
		engine *app.Engine
		err    error
	)
	participant := r.URL.Query().Get("role") == "participant"
	if participant {
		var leave func()
		engine, leave, err = h.ws.Join(r.Context(), r.URL.Query().Get("name"))
		if err == nil {
			defer leave()
		}
	} else {
		engine, err = h.ws.Engine()
	}
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates, cancel := engine.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Warn("ws write error", "error", err)
				return
			}
			if msg.Type == "finished" {
				// closing unblocks the read loop below
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "finished"))
				_ = conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				msg := outboundMessage[any]{Type: "state", Payload: update}
				if update.Finished {
					msg = outboundMessage[any]{Type: "finished", Payload: h.ws.State()}
					if participant {
						msg = outboundMessage[any]{Type: "finished", Payload: update}
					}
				}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
				if update.Finished {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply, err := h.dispatch(engine, inbound)
		if err != nil {
			reply = &outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
		if reply == nil {
			continue
		}
		select {
		case send <- *reply:
		case <-writerDone:
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(engine *app.Engine, inbound inboundMessage) (*outboundMessage[any], error) {
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return nil, errInvalidPayload
		}
		return nil, engine.Select(payload.Option)
	case "next":
		return nil, engine.Next()
	case "skip":
		return nil, engine.Skip()
	case "pause":
		return nil, engine.Pause()
	case "resume":
		return nil, engine.Resume()
	case "edit":
		q, err := engine.BeginEdit()
		if err != nil {
			return nil, err
		}
		return &outboundMessage[any]{Type: "editing", Payload: q}, nil
	case "saveEdit":
		var q domain.Question
		if err := json.Unmarshal(inbound.Payload, &q); err != nil {
			return nil, errInvalidPayload
		}
		return nil, engine.SaveEdit(q)
	case "cancelEdit":
		return nil, engine.CancelEdit()
	case "end":
		return nil, engine.End()
	default:
		return nil, errUnsupportedMessage
	}
}
