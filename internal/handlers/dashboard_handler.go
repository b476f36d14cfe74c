package handlers

import (
	"context"
	"errors"
	"net/http"

	"course-dashboard/internal/status"
	"course-dashboard/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"
)

// Dashboard is the part of services.DashboardService the handlers use.
type Dashboard interface {
	State() models.DashboardState
	Load(ctx context.Context) (models.DashboardState, error)
	Upcoming(compact bool) []models.Course
	Resolve(kind, reference string) (string, error)
}

type DashboardHandler struct {
	dashboard Dashboard
}

func NewDashboardHandler(dashboard Dashboard) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetDashboard returns the current state. With ?refresh=1 a load cycle runs
// first; a failed load still renders as the empty loaded state.
func (h *DashboardHandler) GetDashboard(e *core.RequestEvent) error {
	if cast.ToBool(e.Request.URL.Query().Get("refresh")) {
		state, _ := h.dashboard.Load(e.Request.Context())
		return e.JSON(http.StatusOK, state)
	}
	return e.JSON(http.StatusOK, h.dashboard.State())
}

// Refresh runs a load cycle and reports fetch failures as 502.
func (h *DashboardHandler) Refresh(e *core.RequestEvent) error {
	state, err := h.dashboard.Load(e.Request.Context())
	if err != nil {
		return e.JSON(http.StatusBadGateway, map[string]any{
			"error": err.Error(),
			"state": state,
		})
	}
	return e.JSON(http.StatusOK, state)
}

func (h *DashboardHandler) Upcoming(e *core.RequestEvent) error {
	compact := cast.ToBool(e.Request.URL.Query().Get("compact"))
	return e.JSON(http.StatusOK, map[string]any{
		"compact": compact,
		"courses": h.dashboard.Upcoming(compact),
	})
}

// Resolve maps ?kind=&ref= to a display name.
func (h *DashboardHandler) Resolve(e *core.RequestEvent) error {
	q := e.Request.URL.Query()
	reference := q.Get("ref")

	name, err := h.dashboard.Resolve(q.Get("kind"), reference)
	if errors.Is(err, status.ErrUnknownKind) {
		return apis.NewBadRequestError("Unknown reference kind", err)
	}
	if err != nil {
		return apis.NewInternalServerError("Failed to resolve reference", err)
	}

	return e.JSON(http.StatusOK, map[string]string{
		"ref":  reference,
		"name": name,
	})
}
