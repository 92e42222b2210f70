package main

import (
	"log"

	"github.com/joho/godotenv"

	"dumplin/internal/app"
)

// @title           Dumplin Backend API
// @version         1.0.0
// @description     Phone-number authentication backend: SMS verification codes, bearer-token sessions, account management.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by /auth/verify. Format: "Bearer <token>".
func main() {
	// .env опционален — в продакшене переменные приходят из окружения
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	app.Run()
}
