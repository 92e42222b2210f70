package routes

import (
	"github.com/gin-gonic/gin"

	"dumplin/internal/handlers"
	"dumplin/internal/middleware"
	"dumplin/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	authService services.AuthService,
) *gin.Engine {
	requireAuth := middleware.RequireAuth(authService)

	// ---- auth
	auth := r.Group("/auth")
	{
		auth.POST("/send-code", authHandler.SendCode)
		auth.POST("/verify", authHandler.Verify)
		// logout/session сами разбирают bearer: logout должен быть
		// идемпотентным и для уже недействительного токена
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/session", authHandler.Session)
		auth.DELETE("/account", requireAuth, authHandler.DeleteAccount)
	}

	// ---- api
	api := r.Group("/api")
	{
		api.GET("/items", userHandler.Items)
		api.GET("/protected", requireAuth, userHandler.Protected)
		api.GET("/user", requireAuth, userHandler.GetUser)
		api.PATCH("/user/stats", requireAuth, userHandler.UpdateStats)
	}

	return r
}
