package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/booklib/internal/server/services"
	"github.com/dmitrijs2005/booklib/internal/server/session"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !h.bindJSON(c, &in) {
		return
	}

	sess, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.transport.Attach(c.Writer, sess.Tokens)
	c.JSON(http.StatusCreated, gin.H{"user": sess.User})
}

func (h *Handler) Login(c *gin.Context) {
	var in services.LoginInput
	if !h.bindJSON(c, &in) {
		return
	}

	sess, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.transport.Attach(c.Writer, sess.Tokens)
	c.JSON(http.StatusOK, gin.H{"user": sess.User})
}

// Refresh rotates the token pair using the refresh cookie, or the access
// token when the refresh cookie is gone.
func (h *Handler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	outcome, sess, err := h.auth.Refresh(ctx, session.RefreshToken(c.Request), session.AccessToken(c.Request))
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Debug(ctx, "session refreshed", "outcome", outcome.String(), "user_id", sess.User.ID)
	h.transport.Attach(c.Writer, sess.Tokens)
	c.JSON(http.StatusOK, gin.H{"user": sess.User})
}

// Logout only clears the cookies; issued tokens stay valid until expiry.
func (h *Handler) Logout(c *gin.Context) {
	h.transport.Clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.auth.CurrentUser(ctx, session.AccessToken(c.Request))
	if err != nil {
		h.logger.Error(ctx, "current user lookup failed", "error", err)
		user = nil
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
