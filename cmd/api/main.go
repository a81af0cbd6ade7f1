package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"structura-api/config"
	"structura-api/controllers"
	"structura-api/middleware"
	"structura-api/routes"
	"structura-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize database
	config.InitDB()

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = config.LogWriter

	// Invitation emails run on a bounded worker pool
	mailLog := config.NewLogger("[invitation] ")
	dispatcher := services.NewInvitationDispatcher(
		services.NewInvitationMailer(mailLog),
		services.NewGormDeliveryStore(config.DB),
		config.MailWorkers(),
		config.MailQueueSize(),
		mailLog,
	)
	dispatcher.Start()
	controllers.SetInvitationQueue(dispatcher)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	router.Use(middleware.CORSMiddleware(config.AllowedOrigins(), config.IsProduction()))

	// Login rate limiting needs Redis; without it the limiter is skipped.
	var opts routes.Options
	if rdb := config.NewRedisClient(); rdb != nil {
		defer rdb.Close()
		opts.LoginLimiter = middleware.RateLimitMiddleware(config.LoadRateLimitConfig(), rdb)
		log.Printf("Login rate limiting enabled")
	}

	routes.SetupRoutes(router, opts)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on port %s", port)
		if ginMode == "release" {
			log.Printf("Running in production mode")
		} else {
			log.Printf("Running in development mode")
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Printf("Invitation queue did not drain: %v", err)
	}
	log.Println("Server stopped")
}
