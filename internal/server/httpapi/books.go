package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/services"
	"github.com/gin-gonic/gin"
)

type visibilityRequest struct {
	IsVisible *bool `json:"isVisible"`
}

// ListBooks honours includeHidden only for admins; the service enforces it.
func (h *Handler) ListBooks(c *gin.Context) {
	includeHidden, _ := strconv.ParseBool(c.Query("includeHidden"))
	filter := models.BookFilter{
		Search:        strings.TrimSpace(c.Query("search")),
		Category:      strings.TrimSpace(c.Query("category")),
		IncludeHidden: includeHidden,
	}

	list, err := h.books.List(c.Request.Context(), filter, currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetBook(c *gin.Context) {
	b, err := h.books.Get(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": b})
}

func (h *Handler) BookPages(c *gin.Context) {
	urls, err := h.books.Pages(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": urls})
}

func (h *Handler) CreateBook(c *gin.Context) {
	var in services.BookInput
	if !h.bindJSON(c, &in) {
		return
	}

	b, err := h.books.Create(c.Request.Context(), in, currentUser(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"book": b})
}

func (h *Handler) UpdateBook(c *gin.Context) {
	var patch services.BookPatch
	if !h.bindJSON(c, &patch) {
		return
	}

	b, err := h.books.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": b})
}

func (h *Handler) SetVisibility(c *gin.Context) {
	var req visibilityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.IsVisible == nil {
		h.writeError(c, common.NewValidationError("isVisible", "is required"))
		return
	}

	b, err := h.books.SetVisibility(c.Request.Context(), c.Param("id"), *req.IsVisible)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": b})
}

func (h *Handler) DeleteBook(c *gin.Context) {
	if err := h.books.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book removed"})
}

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.books.Categories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *Handler) RenameCategory(c *gin.Context) {
	var in services.CategoryInput
	if !h.bindJSON(c, &in) {
		return
	}

	name, err := h.books.RenameCategory(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": name})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		h.writeError(c, common.NewValidationError("name", "is required"))
		return
	}

	moved, err := h.books.DeleteCategory(c.Request.Context(), name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": moved})
}
