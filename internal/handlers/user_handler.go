package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dumplin/internal/models"
	"dumplin/internal/services"
)

type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// @Summary      Current user
// @Tags         API
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /api/user [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Summary()})
}

// @Summary      Update usage stats
// @Description  Sets the user's dump counter
// @Tags         API
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      models.UpdateStatsRequest  true  "New dump count"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]interface{}
// @Router       /api/user/stats [patch]
func (h *UserHandler) UpdateStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
		return
	}

	var req models.UpdateStatsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DumpCount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "dump_count is required"})
		return
	}

	if err := h.users.UpdateDumpCount(user.ID, *req.DumpCount); err != nil {
		if errors.Is(err, services.ErrInvalidDumpCount) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "dump_count must be a non-negative integer"})
			return
		}
		log.Printf("[api][stats] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary      List items
// @Tags         API
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/items [get]
func (h *UserHandler) Items(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": []interface{}{}})
}

// @Summary      Protected demo endpoint
// @Tags         API
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /api/protected [get]
func (h *UserHandler) Protected(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "This is a protected endpoint",
		"user":    user.Summary(),
	})
}
