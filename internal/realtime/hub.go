package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	socketio "github.com/googollee/go-socket.io"
	"go.uber.org/zap"
)

const namespace = "/"

// maxExactFloat is the largest integer a JSON number decodes to without loss.
const maxExactFloat = 1 << 53

// ResolveUser extracts a verified user ID from the handshake headers.
type ResolveUser func(header http.Header) (uint64, bool)

// Hub is the Socket.IO server. Each user has a room named by RoomFor, and
// clients join it by emitting "join" with their user ID.
type Hub struct {
	server  *socketio.Server
	resolve ResolveUser
	log     *zap.Logger
}

// NewHub creates a hub. When resolve is non-nil, a client may only join the
// room of the identity carried by its handshake.
func NewHub(resolve ResolveUser, log *zap.Logger) *Hub {
	h := &Hub{
		server:  socketio.NewServer(nil),
		resolve: resolve,
		log:     log.Named("realtime"),
	}

	h.server.OnConnect(namespace, func(s socketio.Conn) error {
		h.log.Debug("Socket connected", zap.String("conn_id", s.ID()))
		return nil
	})

	h.server.OnEvent(namespace, "join", h.join)

	h.server.OnError(namespace, func(s socketio.Conn, err error) {
		h.log.Warn("Socket error", zap.Error(err))
	})

	h.server.OnDisconnect(namespace, func(s socketio.Conn, reason string) {
		h.log.Debug("Socket disconnected", zap.String("conn_id", s.ID()), zap.String("reason", reason))
	})

	return h
}

// join accepts the user ID as a JSON string or number.
func (h *Hub) join(s socketio.Conn, raw any) {
	userID, err := parseUserID(raw)
	if err != nil {
		h.log.Warn("Invalid user ID in join request", zap.String("conn_id", s.ID()), zap.Any("payload", raw), zap.Error(err))
		return
	}
	if h.resolve != nil {
		verified, ok := h.resolve(s.RemoteHeader())
		if !ok || verified != userID {
			h.log.Warn("Rejected join for unverified user", zap.String("conn_id", s.ID()), zap.Uint64("user_id", userID))
			return
		}
	}
	s.Join(RoomFor(userID))
	h.log.Debug("Socket joined room", zap.String("conn_id", s.ID()), zap.Uint64("user_id", userID))
}

func parseUserID(raw any) (uint64, error) {
	var id uint64
	switch v := raw.(type) {
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, err
		}
		id = parsed
	case json.Number:
		parsed, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return 0, err
		}
		id = parsed
	case float64:
		if v != math.Trunc(v) || v < 0 || v > maxExactFloat {
			return 0, fmt.Errorf("user id %v is not a whole number", v)
		}
		id = uint64(v)
	case uint64:
		id = v
	case int:
		if v < 0 {
			return 0, fmt.Errorf("user id %d is negative", v)
		}
		id = uint64(v)
	default:
		return 0, fmt.Errorf("unsupported user id type %T", raw)
	}
	if id == 0 {
		return 0, errors.New("user id must be positive")
	}
	return id, nil
}

// Publish broadcasts event to the user's room.
func (h *Hub) Publish(userID uint64, event string, payload any) {
	h.server.BroadcastToRoom(namespace, RoomFor(userID), event, payload)
}

// Serve runs the engine loop until Close is called.
func (h *Hub) Serve() error {
	return h.server.Serve()
}

// Close tears down every connection.
func (h *Hub) Close() error {
	return h.server.Close()
}

// Handler returns the HTTP handler to mount under /socket.io/.
func (h *Hub) Handler() http.Handler {
	return h.server
}
