package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/booklib/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListUsers(c *gin.Context) {
	list, err := h.users.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) UpdateRole(c *gin.Context) {
	var in services.RoleChange
	if !h.bindJSON(c, &in) {
		return
	}

	u, err := h.users.UpdateRole(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
