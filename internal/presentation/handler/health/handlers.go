package health

import (
	"net/http"
	"time"

	"github.com/dkozyar/parlor/internal/infrastructure/json"
)

type Handler struct {
	startedAt time.Time
}

func NewHandler() *Handler {
	return &Handler{startedAt: time.Now()}
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	data := healthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}
	json.Write(w, http.StatusOK, data)
}
