package httpapi

import "github.com/gin-gonic/gin"

// Register mounts every API route. Access control is not applied here: the
// gate and policy run as engine-wide middleware ahead of these handlers.
func (h Handlers) Register(r gin.IRouter) {
	pub := r.Group("/api/auth/public")
	{
		pub.POST("/login", h.Login)
		pub.POST("/refresh", h.Refresh)
		pub.POST("/signup", h.Signup)
	}

	usersGroup := r.Group("/api/users")
	{
		usersGroup.GET("/me", h.Me)
		usersGroup.GET("/search", h.SearchUsers)
	}

	admin := r.Group("/api/admin")
	{
		admin.GET("/users", h.AdminListUsers)
		admin.PATCH("/users/:id/enabled", h.AdminSetEnabled)
		if h.Audit != nil {
			admin.GET("/audit-events", h.AdminAuditEvents)
		}
	}

	notesGroup := r.Group("/api/notes")
	{
		notesGroup.GET("", h.ListNotes)
		notesGroup.POST("", h.CreateNote)
		notesGroup.PATCH("/layout", h.MoveNotes)
		notesGroup.GET("/categories", h.ListCategories)
		notesGroup.POST("/categories", h.CreateCategory)
		notesGroup.PUT("/categories/:id", h.UpdateCategory)
		notesGroup.DELETE("/categories/:id", h.DeleteCategory)
		notesGroup.GET("/:id", h.GetNote)
		notesGroup.PUT("/:id", h.UpdateNote)
		notesGroup.DELETE("/:id", h.DeleteNote)
	}

	events := r.Group("/api/planner/events")
	{
		events.GET("", h.ListEvents)
		events.POST("", h.CreateEvent)
		events.GET("/:id", h.GetEvent)
		events.PUT("/:id", h.UpdateEvent)
		events.DELETE("/:id", h.DeleteEvent)
		events.POST("/:id/share", h.ShareEvent)
	}
	r.GET("/api/planner/public/events/:shareCode", h.SharedEvent)

	sheets := r.Group("/api/ledger/sheets")
	{
		sheets.GET("", h.ListSheets)
		sheets.POST("", h.CreateSheet)
		sheets.GET("/:id", h.GetSheet)
		sheets.PUT("/:id", h.UpdateSheet)
		sheets.DELETE("/:id", h.DeleteSheet)
		sheets.PUT("/:id/cells", h.PutCells)
	}
}
