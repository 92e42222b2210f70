package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dumplin/internal/middleware"
	"dumplin/internal/models"
	"dumplin/internal/services"
)

type AuthHandler struct {
	auth services.AuthService
}

func NewAuthHandler(auth services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// @Summary      Send verification code
// @Description  Sends a one-time SMS code to the given phone number
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.SendCodeRequest  true  "Phone number"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      429      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]interface{}
// @Router       /auth/send-code [post]
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req models.SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Phone number is required"})
		return
	}

	if err := h.auth.SendCode(c.Request.Context(), req.PhoneNumber, c.ClientIP()); err != nil {
		var rle *services.RateLimitError
		switch {
		case errors.Is(err, services.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid phone number format"})
		case errors.As(err, &rle):
			c.Header("Retry-After", fmt.Sprintf("%d", int(rle.RetryAfter.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": rle.Message})
		default:
			log.Printf("[auth][send-code] error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to send verification code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code sent successfully"})
}

// @Summary      Verify code
// @Description  Exchanges a valid SMS code for a session token, creating the user on first login
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.VerifyRequest  true  "Phone number and code"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]interface{}
// @Router       /auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Phone number and code are required"})
		return
	}

	res, err := h.auth.Verify(c.Request.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		if errors.Is(err, services.ErrCodeInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid or expired verification code"})
			return
		}
		log.Printf("[auth][verify] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Verification failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   res.Token,
		"user":    res.User,
	})
}

// @Summary      Logout
// @Description  Deletes the presented session token
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "No token provided"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		log.Printf("[auth][logout] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Logout failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// @Summary      Check session
// @Description  Validates the bearer token; past half of its lifetime the token is rotated and the new value returned
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "No token provided"})
		return
	}

	st, err := h.auth.CheckSession(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrSessionInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
			return
		}
		log.Printf("[auth][session] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to validate session"})
		return
	}

	// token: null, если ротации не было — клиент обязан подхватывать
	// новое значение, когда оно есть
	var newToken interface{}
	if st.Refreshed {
		newToken = st.Token
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"valid":     true,
		"refreshed": st.Refreshed,
		"token":     newToken,
		"user":      st.User,
	})
}

// @Summary      Delete account
// @Description  Soft-deletes the account and revokes every session of the user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /auth/account [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
		return
	}

	if err := h.auth.DeleteAccount(c.Request.Context(), user.ID); err != nil {
		log.Printf("[auth][delete-account] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account deleted"})
}
