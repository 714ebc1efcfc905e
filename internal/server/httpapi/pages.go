package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/gin-gonic/gin"
)

// LoginPage sends signed-in visitors to their home page.
func (h *Handler) LoginPage(c *gin.Context) {
	if user := currentUser(c); user != nil {
		c.Redirect(http.StatusFound, user.Role.Home())
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": nil})
}

// DashboardPage is the reader's view-model: their progress plus the visible
// catalog.
func (h *Handler) DashboardPage(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	progress, err := h.progress.ListForUser(ctx, user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	catalog, err := h.books.List(ctx, models.BookFilter{}, user)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       user,
		"progress":   progress,
		"books":      catalog.Books,
		"categories": catalog.Categories,
	})
}

func (h *Handler) AdminPage(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.users.List(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	summary, err := h.books.Summary(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    currentUser(c),
		"users":   users.Users,
		"stats":   users.Stats,
		"catalog": summary,
	})
}
