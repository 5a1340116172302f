package handlers

import (
	"context"
	"net/http"
)

// ProfileCounter reports how many calibrated profiles are stored.
type ProfileCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthHandler handles the health check endpoint
type HealthHandler struct {
	profiles ProfileCounter
}

// NewHealthHandler creates a new health handler. A nil counter omits the
// profile count.
func NewHealthHandler(profiles ProfileCounter) *HealthHandler {
	return &HealthHandler{profiles: profiles}
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status   string `json:"status"`
	Profiles *int   `json:"profiles,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Get reports liveness. A failing profile store reports "degraded" with
// status 200.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.profiles != nil {
		n, err := h.profiles.Count(r.Context())
		if err != nil {
			resp.Status = "degraded"
			resp.Error = err.Error()
		} else {
			resp.Profiles = &n
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
