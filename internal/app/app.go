package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"dumplin/internal/config"
	"dumplin/internal/handlers"
	"dumplin/internal/repositories"
	"dumplin/internal/routes"
	"dumplin/internal/services"
	"dumplin/internal/utils"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "dumplin/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	if cfg.Database.DSN == "" {
		log.Fatal("database url is not configured (DATABASE_URL)")
	}
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("close database: %v", err)
		}
	}()
	// короткие таймауты, чтобы не висеть на деградировавшей базе
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(20 * time.Second)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal("ping database: ", err)
		}
	}

	// === Redis (опционально) ===
	// Без Redis rate limiting молча отключён — остальное работает.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: 5 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := client.Ping(ctx).Result(); err != nil {
			log.Printf("warning: redis connection failed, rate limiting disabled: %v", err)
		} else {
			redisClient = client
			defer client.Close()
		}
		cancel()
	} else {
		log.Printf("warning: REDIS_ADDR not set, rate limiting disabled")
	}
	limiter := services.NewRateLimiter(services.NewRedisKVStore(redisClient))

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	codeRepo := repositories.NewVerificationCodeRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)

	// === Services ===
	smsClient := utils.NewClientWithOptions(
		cfg.Twilio.AccountSID,
		cfg.Twilio.AuthToken,
		cfg.Twilio.FromNumber,
		cfg.Twilio.DryRun,
	)
	authService := services.NewAuthService(
		userRepo,
		codeRepo,
		sessionRepo,
		repositories.NewTxRunner(db),
		limiter,
		smsClient,
		services.AuthConfig{
			SessionExpiryDays: cfg.Session.ExpiryDays,
			TestPhoneNumber:   cfg.TestLogin.PhoneNumber,
			TestCode:          cfg.TestLogin.Code,
		},
	)
	userService := services.NewUserService(userRepo)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Health
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Dumplin Backend API",
			"version": "1.0.0",
		})
	})
	router.GET("/health/db", dbHealth(db))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, authHandler, userHandler, authService)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("run server: ", err)
	}
}

func dbHealth(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var now time.Time
		err := db.QueryRowContext(ctx, `SELECT NOW()`).Scan(&now)
		elapsed := time.Since(start)

		status := "connected"
		code := http.StatusOK
		if err != nil {
			log.Printf("[health][db] %v", err)
			status = "disconnected"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"database": gin.H{
				"status":       status,
				"responseTime": fmt.Sprintf("%dms", elapsed.Milliseconds()),
				"timestamp":    time.Now().UTC().Format(time.RFC3339),
			},
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
