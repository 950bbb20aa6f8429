package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gocampus/internal/auth"
	"gocampus/internal/blob"
	"gocampus/internal/cloudinary"
	"gocampus/internal/config"
	"gocampus/internal/handler"
	"gocampus/internal/httpmiddleware"
	"gocampus/internal/qr"
	"gocampus/internal/queue"
	"gocampus/internal/scan"
	"gocampus/internal/store"
	"gocampus/internal/student"
	"gocampus/internal/ticket"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	creds, err := auth.NewCredentials(cfg.AdminUser, cfg.AdminPasswordHash, cfg.AdminPassword)
	if err != nil {
		return err
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return err
	}

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "gocampus:qrjobs")
	}

	studentRepo := student.NewRepository(db.Client)
	studentSvc := student.NewService(studentRepo, cfg.FeeAmount, cfg.ValidityDays, cfg.RenewalAlertDays)

	resolver := scan.NewResolver(studentRepo, scan.Config{
		Tiers:          []scan.Tier{scan.TierIdentifier, scan.TierRoute, scan.TierName},
		CandidateLimit: cfg.CandidateLimit,
	})
	guard := scan.NewGuard(scan.NewRepository(db.Client))
	scanSvc := scan.NewService(resolver, guard)

	encoder := qr.NewEncoder(blobs, qr.Options{
		Size:          cfg.QRSize,
		WatermarkText: cfg.WatermarkText,
		MicroText:     cfg.MicroText,
		LogoPath:      cfg.LogoPath,
	})

	tickets := ticket.NewRepository(db.Client, cfg.TicketRetention)

	h := handler.New(cfg, creds, studentRepo, studentSvc, scanSvc, encoder, blobs, tickets, q)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	h.Routes(r, auth.AdminAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// newBlobStore picks Cloudinary when configured, local disk otherwise.
func newBlobStore(cfg config.App) (blob.Store, error) {
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
		return cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder), nil
	}
	log.Println("Cloudinary not configured, storing artifacts in", cfg.QRLocalDir)
	return blob.NewLocal(cfg.QRLocalDir)
}
