package httpapi

import (
	"strconv"

	"dailyon/internal/notes"
	"dailyon/internal/response"

	"github.com/gin-gonic/gin"
)

type noteRequest struct {
	CategoryID int64          `json:"categoryId" binding:"min=0"`
	Title      string         `json:"title" binding:"required,max=160"`
	Content    string         `json:"content"`
	Color      string         `json:"color" binding:"max=30"`
	Pinned     bool           `json:"pinned"`
	Tags       []string       `json:"tags" binding:"max=20,dive,max=40"`
	Fields     map[string]any `json:"fields"`
	Layout     *notes.Layout  `json:"layout"`
	Position   float64        `json:"position"`
}

func (r noteRequest) draft() notes.Draft {
	return notes.Draft{
		CategoryID: r.CategoryID,
		Title:      r.Title,
		Content:    r.Content,
		Color:      r.Color,
		Pinned:     r.Pinned,
		Tags:       r.Tags,
		Fields:     r.Fields,
		Layout:     r.Layout,
		Position:   r.Position,
	}
}

type layoutRequest struct {
	Items []layoutItem `json:"items" binding:"required,max=500,dive"`
}

type layoutItem struct {
	NoteID   int64         `json:"noteId" binding:"required,min=1"`
	Position float64       `json:"position"`
	Layout   *notes.Layout `json:"layout"`
}

type categoryRequest struct {
	Name        string        `json:"name" binding:"required,max=120"`
	Description string        `json:"description" binding:"max=400"`
	Fields      []notes.Field `json:"fields" binding:"max=50"`
}

func (r categoryRequest) draft() notes.CategoryDraft {
	return notes.CategoryDraft{Name: r.Name, Description: r.Description, Fields: r.Fields}
}

func (h Handlers) ListNotes(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var f notes.ListFilter
	if raw := c.Query("categoryId"); raw != "" {
		cat, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || cat <= 0 {
			response.Fail(c, response.CodeBadRequest, "categoryId must be a positive integer")
			return
		}
		f.CategoryID = cat
	}
	f.Keyword = c.Query("keyword")
	out, err := h.Notes.List(c.Request.Context(), id.UserID, f)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, out)
}

func (h Handlers) GetNote(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	noteID, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.Notes.Get(c.Request.Context(), id.UserID, noteID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, n)
}

func (h Handlers) CreateNote(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req noteRequest
	if !bind(c, &req) {
		return
	}
	n, err := h.Notes.Create(c.Request.Context(), id.UserID, req.draft())
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, n)
}

func (h Handlers) UpdateNote(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	noteID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req noteRequest
	if !bind(c, &req) {
		return
	}
	n, err := h.Notes.Update(c.Request.Context(), id.UserID, noteID, req.draft())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, n)
}

func (h Handlers) DeleteNote(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	noteID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Notes.Delete(c.Request.Context(), id.UserID, noteID); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, nil)
}

// MoveNotes saves a board rearrangement in one batch.
func (h Handlers) MoveNotes(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req layoutRequest
	if !bind(c, &req) {
		return
	}
	moves := make([]notes.LayoutMove, 0, len(req.Items))
	for _, it := range req.Items {
		moves = append(moves, notes.LayoutMove{NoteID: it.NoteID, Position: it.Position, Layout: it.Layout})
	}
	if err := h.Notes.MoveNotes(c.Request.Context(), id.UserID, moves); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, nil)
}

func (h Handlers) ListCategories(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	out, err := h.Notes.ListCategories(c.Request.Context(), id.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, out)
}

func (h Handlers) CreateCategory(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req categoryRequest
	if !bind(c, &req) {
		return
	}
	cat, err := h.Notes.CreateCategory(c.Request.Context(), id.UserID, req.draft())
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, cat)
}

func (h Handlers) UpdateCategory(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	catID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if !bind(c, &req) {
		return
	}
	cat, err := h.Notes.UpdateCategory(c.Request.Context(), id.UserID, catID, req.draft())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, cat)
}

func (h Handlers) DeleteCategory(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	catID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Notes.DeleteCategory(c.Request.Context(), id.UserID, catID); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, nil)
}
