// Package httpapi exposes the services over HTTP with gin: JSON API routes
// under /api and the redirecting page routes.
package httpapi

import (
	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/services"
	"github.com/dmitrijs2005/booklib/internal/server/session"
	"github.com/gin-gonic/gin"
)

const userKey = "sessionUser"

type Handler struct {
	auth      *services.AuthService
	users     *services.UserService
	progress  *services.ProgressService
	books     *services.BookService
	transport *session.Transport
	logger    logging.Logger
}

func NewHandler(
	auth *services.AuthService,
	users *services.UserService,
	progress *services.ProgressService,
	books *services.BookService,
	transport *session.Transport,
	logger logging.Logger,
) *Handler {
	return &Handler{
		auth:      auth,
		users:     users,
		progress:  progress,
		books:     books,
		transport: transport,
		logger:    logger.With("module", "http"),
	}
}

// currentUser returns the caller set by the guard or identify middleware.
func currentUser(c *gin.Context) *models.SessionUser {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.SessionUser)
	return u
}
