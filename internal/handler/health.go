package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vergon/rgr-api/internal/utils"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check pings the database and reports overall status. A broken database
// turns the probe into a 503 so load balancers stop routing here.
func (h *HealthHandler) Check(c echo.Context) error {
	status := map[string]any{
		"status":    "ok",
		"database":  "up",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.db.PingContext(c.Request().Context()); err != nil {
		status["status"] = "degraded"
		status["database"] = "down"
		return c.JSON(http.StatusServiceUnavailable, utils.Response{
			Success: false,
			Message: "Service degraded",
			Data:    status,
		})
	}
	return c.JSON(http.StatusOK, utils.OK("Service healthy", status))
}
