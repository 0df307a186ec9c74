package rooms

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/dkozyar/parlor/internal/infrastructure/configs"
	"github.com/dkozyar/parlor/internal/infrastructure/json"
	"github.com/dkozyar/parlor/internal/infrastructure/logging"
	"github.com/dkozyar/parlor/internal/infrastructure/metrics"
	"github.com/dkozyar/parlor/internal/infrastructure/validate"
	"github.com/dkozyar/parlor/internal/infrastructure/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var roomKeyValidator = validate.Field("roomKey",
	validate.Required(),
	validate.MaxLength(64),
	validate.NoSpaces(),
)

type Handler struct {
	config    configs.Config
	directory *ws.Directory
	lifecycle *ws.Lifecycle
	logger    logging.Logger
	metrics   *metrics.Signaling
}

func NewHandler(
	config configs.Config,
	directory *ws.Directory,
	lifecycle *ws.Lifecycle,
	logger logging.Logger,
	m *metrics.Signaling,
) *Handler {
	return &Handler{
		config:    config,
		directory: directory,
		lifecycle: lifecycle,
		logger:    logger,
		metrics:   m,
	}
}

// GetRoomHandler reports who is currently in a room. An unknown key is a
// valid empty room, not an error; rooms exist only while occupied.
func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomKey := chi.URLParam(r, "roomKey")
	if err := roomKeyValidator(roomKey); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	members := h.directory.MembersExcept(roomKey, "")
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}

	resp := roomResponse{
		RoomKey:     roomKey,
		MemberCount: len(ids),
		Members:     ids,
	}

	json.Write(w, http.StatusOK, resp)
}

// ConnectHandler upgrades to a websocket without joining anything. The
// client picks a room by sending a join frame on the socket.
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "")
}

// JoinRoomHandler upgrades to a websocket and joins the room named in the
// path before the first client frame is read.
func (h *Handler) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomKey := chi.URLParam(r, "roomKey")
	if err := roomKeyValidator(roomKey); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	h.serve(w, r, roomKey)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, roomKey string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.Transport, logging.Upgrade, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ClientIp:     r.RemoteAddr,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(
		conn,
		h.lifecycle,
		h.logger,
		h.metrics,
		h.config.Relay.SendBuffer,
		h.config.Relay.MaxMessageSize,
	)

	go client.WritePump()

	if roomKey != "" {
		h.lifecycle.HandleMessage(r.Context(), client.Session(), &ws.Message{
			Type: ws.RoomJoin,
			Room: roomKey,
		})
	}

	client.ReadPump(r.Context())
}
