package handlers

import (
	"github.com/gin-gonic/gin"

	"dumplin/internal/middleware"
	"dumplin/internal/models"
)

func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(middleware.CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}
