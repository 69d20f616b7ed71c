package httpapi

import (
	"dailyon/internal/planner"
	"dailyon/internal/response"

	"github.com/gin-gonic/gin"
)

type eventRequest struct {
	Title          string   `json:"title" binding:"required,max=160"`
	Description    string   `json:"description"`
	StartDate      string   `json:"startDate" binding:"required"`
	EndDate        string   `json:"endDate"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	Location       string   `json:"location" binding:"max=255"`
	Tags           []string `json:"tags" binding:"max=20,dive,max=40"`
	ParticipantIDs []int64  `json:"participantIds" binding:"max=50"`
}

func (r eventRequest) draft() planner.Draft {
	return planner.Draft{
		Title:       r.Title,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Location:    r.Location,
		Tags:        r.Tags,

		ParticipantIDs: r.ParticipantIDs,
	}
}

type shareRequest struct {
	Shared *bool `json:"shared" binding:"required"`
}

func (h Handlers) ListEvents(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	out, err := h.Planner.List(c.Request.Context(), id.UserID, c.Query("from"), c.Query("to"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, out)
}

func (h Handlers) GetEvent(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	eventID, ok := idParam(c, "id")
	if !ok {
		return
	}
	e, err := h.Planner.Get(c.Request.Context(), id.UserID, eventID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, e)
}

func (h Handlers) CreateEvent(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req eventRequest
	if !bind(c, &req) {
		return
	}
	e, err := h.Planner.Create(c.Request.Context(), id.UserID, req.draft())
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, e)
}

func (h Handlers) UpdateEvent(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	eventID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req eventRequest
	if !bind(c, &req) {
		return
	}
	e, err := h.Planner.Update(c.Request.Context(), id.UserID, eventID, req.draft())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, e)
}

func (h Handlers) DeleteEvent(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	eventID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Planner.Delete(c.Request.Context(), id.UserID, eventID); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, nil)
}

func (h Handlers) ShareEvent(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	eventID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req shareRequest
	if !bind(c, &req) {
		return
	}
	e, err := h.Planner.SetShared(c.Request.Context(), id.UserID, eventID, *req.Shared)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, e)
}

// SharedEvent is reachable without a token; the share code is the credential.
func (h Handlers) SharedEvent(c *gin.Context) {
	e, err := h.Planner.FindShared(c.Request.Context(), c.Param("shareCode"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, e)
}
