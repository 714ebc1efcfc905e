package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/booklib/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListProgress(c *gin.Context) {
	user := currentUser(c)

	p, err := h.progress.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": p})
}

// GetProgress answers {progress: null} when the caller has not opened the
// book yet.
func (h *Handler) GetProgress(c *gin.Context) {
	user := currentUser(c)

	p, err := h.progress.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": p})
}

func (h *Handler) RecordProgress(c *gin.Context) {
	user := currentUser(c)

	var in services.ProgressInput
	if !h.bindJSON(c, &in) {
		return
	}

	p, err := h.progress.Record(c.Request.Context(), *user, c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": p})
}
