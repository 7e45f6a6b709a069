package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dayanaadylkhanova/device-readings/internal/adapter/transport/payload"
	"github.com/dayanaadylkhanova/device-readings/internal/service"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const idleTimeout = 120 * time.Second

// command is one client message. Untyped fields are validated by payload.Build.
type command struct {
	Op       string `json:"op"`
	ID       any    `json:"id"`
	Readings any    `json:"readings"`
}

// Handler serves the readings API over a websocket, one JSON reply per message.
type Handler struct {
	log        *zap.Logger
	store      service.DeviceStore
	maxMessage int64
	upgrader   websocket.Upgrader
}

func NewHandler(log *zap.Logger, store service.DeviceStore, maxMessage int64) *Handler {
	return &Handler{
		log:        log,
		store:      store,
		maxMessage: maxMessage,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.log.Debug("ws upgrade", zap.Error(err))
		return
	}
	defer conn.Close()
	if h.maxMessage > 0 {
		conn.SetReadLimit(h.maxMessage)
	}

	for {
		if err := conn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("ws read", zap.Error(err))
			}
			return
		}
		if err := conn.WriteJSON(h.dispatch(msg)); err != nil {
			h.log.Debug("ws write", zap.Error(err))
			return
		}
	}
}

func (h *Handler) dispatch(msg []byte) map[string]any {
	var cmd command
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&cmd); err != nil {
		return reply("", http.StatusBadRequest, "error", payload.MsgMalformedJSON)
	}

	switch cmd.Op {
	case "ping":
		return reply(cmd.Op, http.StatusOK, "message", "Hello world!")
	case "readings":
		uid, samples, err := payload.Build(cmd.ID, cmd.Readings)
		if err != nil {
			return reply(cmd.Op, http.StatusBadRequest, "error", err.Error())
		}
		h.store.Ingest(uid, samples)
		return reply(cmd.Op, http.StatusOK, "success", true)
	case "total_count":
		uid, ok := payload.DeviceUID(cmd.ID)
		if !ok {
			return reply(cmd.Op, http.StatusBadRequest, "error", payload.MsgIDRequired)
		}
		total, err := h.store.TotalCount(uid)
		if err != nil {
			return h.storeError(cmd.Op, err)
		}
		return reply(cmd.Op, http.StatusOK, "total_count", total)
	case "latest_timestamp":
		uid, ok := payload.DeviceUID(cmd.ID)
		if !ok {
			return reply(cmd.Op, http.StatusBadRequest, "error", payload.MsgIDRequired)
		}
		at, found, err := h.store.LatestTimestamp(uid)
		if err != nil {
			return h.storeError(cmd.Op, err)
		}
		var latest any
		if found {
			latest = at.Format()
		}
		return reply(cmd.Op, http.StatusOK, "latest_timestamp", latest)
	default:
		return reply(cmd.Op, http.StatusNotFound, "error", "Not Found")
	}
}

func (h *Handler) storeError(op string, err error) map[string]any {
	if errors.Is(err, service.ErrDeviceNotFound) {
		return reply(op, http.StatusNotFound, "error", "Device not found")
	}
	h.log.Error("store", zap.Error(err))
	return reply(op, http.StatusInternalServerError, "error", "internal error")
}

func reply(op string, code int, key string, value any) map[string]any {
	return map[string]any{"op": op, "code": code, key: value}
}
