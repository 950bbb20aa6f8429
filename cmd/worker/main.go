package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gocampus/internal/blob"
	"gocampus/internal/cloudinary"
	"gocampus/internal/config"
	"gocampus/internal/metrics"
	"gocampus/internal/qr"
	"gocampus/internal/queue"
	"gocampus/internal/store"
	"gocampus/internal/student"
)

// Worker consumes QR jobs, renders and uploads the artifact, and stores the
// reference on the student record. Render or upload failure leaves the
// record's existing reference untouched.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "gocampus:qrjobs")
	}

	var blobs blob.Store
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		blobs = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	} else {
		local, err := blob.NewLocal(cfg.QRLocalDir)
		if err != nil {
			log.Fatalf("blob store init failed: %v", err)
		}
		blobs = local
	}

	encoder := qr.NewEncoder(blobs, qr.Options{
		Size:          cfg.QRSize,
		WatermarkText: cfg.WatermarkText,
		MicroText:     cfg.MicroText,
		LogoPath:      cfg.LogoPath,
	})
	repo := student.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != queue.TypeGenerateQR {
			continue
		}

		id := string(msg.Body)
		log.Printf("rendering QR for %s", id)

		ref, err := encoder.Encode(ctx, id)
		if err != nil {
			metrics.QRRenders.WithLabelValues("error").Inc()
			log.Printf("QR encode failed for %s: %v", id, err)
			continue
		}
		metrics.QRRenders.WithLabelValues("ok").Inc()

		if err := repo.UpdateQRRef(ctx, id, ref); err != nil {
			log.Printf("artifact ref update failed for %s: %v", id, err)
			continue
		}
		log.Printf("QR stored for %s: %s", id, ref)

		time.Sleep(10 * time.Millisecond)
	}

	log.Println("worker stopped")
}
