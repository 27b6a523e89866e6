package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vergon/rgr-api/internal/model"
	"github.com/vergon/rgr-api/internal/repository"
	"github.com/vergon/rgr-api/internal/utils"
)

// AuditHandler exposes the audit trail for inspection.
type AuditHandler struct {
	repo *repository.AuditRepo
}

func NewAuditHandler(repo *repository.AuditRepo) *AuditHandler {
	return &AuditHandler{repo: repo}
}

type auditPayload struct {
	ID         int64     `json:"id"`
	UserLogin  string    `json:"userLogin"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId,omitempty"`
	Details    string    `json:"details,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toAuditPayload(e model.AuditLog) auditPayload {
	return auditPayload{
		ID:         e.ID,
		UserLogin:  e.UserLogin,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		Details:    e.Details,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		CreatedAt:  e.CreatedAt,
	}
}

// Recent returns the caller's latest audit entries, newest first.
func (h *AuditHandler) Recent(c echo.Context) error {
	id, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > maxPageSize {
		limit = 50
	}

	entries, err := h.repo.RecentByUser(c.Request().Context(), id.Login, id.TenantID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, utils.Error("Failed to list audit entries"))
	}

	items := make([]auditPayload, 0, len(entries))
	for _, e := range entries {
		items = append(items, toAuditPayload(e))
	}
	return c.JSON(http.StatusOK, utils.OK("Audit entries retrieved", items))
}
