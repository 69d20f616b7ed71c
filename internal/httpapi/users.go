package httpapi

import (
	"log/slog"
	"strconv"

	"dailyon/internal/response"
	"dailyon/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h Handlers) Me(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	p, err := h.Users.Profile(c.Request.Context(), id.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, p)
}

func (h Handlers) SearchUsers(c *gin.Context) {
	res, err := h.Users.Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, res)
}

// --- Admin ---

func (h Handlers) AdminListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	res, err := h.Users.List(c.Request.Context(), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, res)
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (h Handlers) AdminSetEnabled(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	target, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req setEnabledRequest
	if !bind(c, &req) {
		return
	}

	p, err := h.Users.SetEnabled(c.Request.Context(), actor.UserID, target, *req.Enabled)
	if err != nil {
		fail(c, err)
		return
	}
	if h.Audit != nil {
		if err := h.Audit.LogAccountToggle(c.Request.Context(), actor.UserID, target, *req.Enabled, c.ClientIP()); err != nil {
			logger.FromGin(c).Warn("audit append failed", slog.String("error", err.Error()))
		}
	}
	response.OK(c, p)
}

func (h Handlers) AdminAuditEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	evs, err := h.Audit.Recent(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, evs)
}
