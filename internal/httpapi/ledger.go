package httpapi

import (
	"dailyon/internal/ledger"
	"dailyon/internal/response"

	"github.com/gin-gonic/gin"
)

type sheetRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description"`
	Orientation string `json:"orientation" binding:"omitempty,oneof=LANDSCAPE PORTRAIT"`
	RowCount    int    `json:"rowCount" binding:"gte=0"`
	ColumnCount int    `json:"columnCount" binding:"gte=0"`
}

func (r sheetRequest) draft() ledger.SheetDraft {
	return ledger.SheetDraft{
		Title:       r.Title,
		Description: r.Description,
		Orientation: ledger.Orientation(r.Orientation),
		RowCount:    r.RowCount,
		ColumnCount: r.ColumnCount,
	}
}

type cellRequest struct {
	Row       int    `json:"row" binding:"gte=0"`
	Col       int    `json:"col" binding:"gte=0"`
	ValueRaw  string `json:"valueRaw"`
	ValueType string `json:"valueType" binding:"max=20"`
	Formula   string `json:"formula"`
	Note      string `json:"note"`
}

type putCellsRequest struct {
	Cells []cellRequest `json:"cells" binding:"required,min=1,dive"`
}

func (h Handlers) ListSheets(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	out, err := h.Ledger.ListSheets(c.Request.Context(), id.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, out)
}

func (h Handlers) GetSheet(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	sheetID, ok := idParam(c, "id")
	if !ok {
		return
	}
	sh, err := h.Ledger.GetSheet(c.Request.Context(), id.UserID, sheetID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, sh)
}

func (h Handlers) CreateSheet(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req sheetRequest
	if !bind(c, &req) {
		return
	}
	sh, err := h.Ledger.CreateSheet(c.Request.Context(), id.UserID, req.draft())
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, sh)
}

func (h Handlers) UpdateSheet(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	sheetID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req sheetRequest
	if !bind(c, &req) {
		return
	}
	sh, err := h.Ledger.UpdateSheet(c.Request.Context(), id.UserID, sheetID, req.draft())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, sh)
}

func (h Handlers) DeleteSheet(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	sheetID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Ledger.DeleteSheet(c.Request.Context(), id.UserID, sheetID); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, nil)
}

func (h Handlers) PutCells(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	sheetID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req putCellsRequest
	if !bind(c, &req) {
		return
	}
	cells := make([]ledger.Cell, len(req.Cells))
	for i, rc := range req.Cells {
		cells[i] = ledger.Cell{
			Row:       rc.Row,
			Col:       rc.Col,
			ValueRaw:  rc.ValueRaw,
			ValueType: rc.ValueType,
			Formula:   rc.Formula,
			Note:      rc.Note,
		}
	}
	sh, err := h.Ledger.PutCells(c.Request.Context(), id.UserID, sheetID, cells)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, sh)
}
