package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const runningStatus = "Bot is running"

// StatusSource reports what the liveness endpoint shows.
type StatusSource interface {
	State() string
	Monitored() int
}

// HealthRoutes serves the liveness endpoint.
type HealthRoutes struct {
	status  StatusSource
	started time.Time
	now     func() time.Time
}

type healthResponse struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
	State     string  `json:"state"`
	Monitored int     `json:"monitored"`
}

// NewHealthRoutes measures uptime from started.
func NewHealthRoutes(status StatusSource, started time.Time) *HealthRoutes {
	return &HealthRoutes{status: status, started: started, now: time.Now}
}

// RegisterRoutes registers the liveness endpoint.
func (h *HealthRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/", h.handleHealth)
}

func (h *HealthRoutes) handleHealth(c echo.Context) error {
	now := h.now()
	resp := healthResponse{
		Status:    runningStatus,
		Uptime:    now.Sub(h.started).Seconds(),
		Timestamp: now.UTC().Format(time.RFC3339),
		State:     h.status.State(),
		Monitored: h.status.Monitored(),
	}
	return c.JSON(http.StatusOK, resp)
}
