package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route. Guards run before handlers: API routes answer
// 401/403 JSON, page routes redirect.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.Me)

		adminOnly := h.guard(apiMode, models.RoleAdmin)
		anyRole := h.guard(apiMode)

		api.GET("/users", adminOnly, h.ListUsers)
		api.PATCH("/users", adminOnly, h.UpdateRole)

		api.GET("/progress", anyRole, h.ListProgress)

		api.GET("/books", h.identify(), h.ListBooks)
		api.POST("/books", adminOnly, h.CreateBook)
		api.GET("/books/:id", h.identify(), h.GetBook)
		api.PUT("/books/:id", adminOnly, h.UpdateBook)
		api.DELETE("/books/:id", adminOnly, h.DeleteBook)
		api.PATCH("/books/:id/visibility", adminOnly, h.SetVisibility)
		api.GET("/books/:id/pages", h.identify(), h.BookPages)
		api.GET("/books/:id/progress", anyRole, h.GetProgress)
		api.POST("/books/:id/progress", anyRole, h.RecordProgress)

		api.GET("/categories", h.ListCategories)
		api.POST("/categories", adminOnly, h.RenameCategory)
		api.DELETE("/categories", adminOnly, h.DeleteCategory)
	}

	r.GET("/login", h.identify(), h.LoginPage)
	r.GET("/dashboard", h.guard(pageMode), h.DashboardPage)
	r.GET("/admin", h.guard(pageMode, models.RoleAdmin), h.AdminPage)

	return r
}
