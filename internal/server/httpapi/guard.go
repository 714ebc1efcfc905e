package httpapi

import (
	"errors"
	"net/http"
	"slices"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/services"
	"github.com/dmitrijs2005/booklib/internal/server/session"
	"github.com/gin-gonic/gin"
)

type guardMode int

const (
	apiMode guardMode = iota
	pageMode
)

// Authorize decides access for a resolved caller. No caller is
// common.ErrorUnauthorized and is reported before any role check. A caller
// whose role is not in allowed gets common.ErrorForbidden. An empty allowed
// list admits every valid role.
func Authorize(user *models.SessionUser, allowed ...models.Role) error {
	if user == nil {
		return common.ErrorUnauthorized
	}
	if !user.Role.Valid() {
		return common.ErrorForbidden
	}
	if len(allowed) == 0 || slices.Contains(allowed, user.Role) {
		return nil
	}
	return common.ErrorForbidden
}

// guard admits callers whose role is in allowed. API mode trusts the access
// token claims. Page mode reloads the account, so a deleted account reads as
// logged out and a role change applies at once.
func (h *Handler) guard(mode guardMode, allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := session.AccessToken(c.Request)

		var (
			user   *models.SessionUser
			reason services.Reason
		)
		if mode == pageMode {
			var err error
			if user, err = h.auth.CurrentUser(ctx, token); err != nil {
				h.writeError(c, err)
				c.Abort()
				return
			}
			if user == nil {
				if _, reason = h.auth.Resolve(ctx, token); reason == services.ReasonNone {
					reason = services.ReasonAccountMissing
				}
			}
		} else {
			user, reason = h.auth.Resolve(ctx, token)
		}

		err := Authorize(user, allowed...)
		switch {
		case err == nil:
			c.Set(userKey, user)
			c.Next()

		case errors.Is(err, common.ErrorUnauthorized):
			h.logger.Warn(ctx, "unauthenticated request", "reason", reason, "path", c.Request.URL.Path)
			if mode == pageMode {
				c.Redirect(http.StatusFound, "/login")
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})

		default:
			h.logger.Warn(ctx, "forbidden request", "user_id", user.ID, "role", user.Role.String(), "path", c.Request.URL.Path)
			if mode == pageMode {
				c.Redirect(http.StatusFound, user.Role.Home())
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		}
	}
}

// identify attaches the caller when there is one and never rejects.
func (h *Handler) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, _ := h.auth.Resolve(c.Request.Context(), session.AccessToken(c.Request)); user != nil {
			c.Set(userKey, user)
		}
		c.Next()
	}
}
