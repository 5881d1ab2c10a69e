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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"postboard/auth"
	"postboard/config"
	"postboard/database"
	"postboard/events"
	"postboard/handlers"
	"postboard/media"
	"postboard/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.OTELServiceName)
	if err != nil {
		log.Fatalf("Tracing initialization failed: %v", err)
	}
	defer func() {
		c, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = shutdownTracing(c)
	}()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer store.Close()

	hub := handlers.NewHub()
	defer hub.Close()
	publishers := events.Fanout{hub}

	if cfg.RedisAddr != "" {
		rp, err := events.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisStream)
		if err != nil {
			log.Fatalf("Redis initialization failed: %v", err)
		}
		defer rp.Close()
		publishers = append(publishers, rp)
		log.Printf("Publishing events to redis stream %s", cfg.RedisStream)
	}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publishers = append(publishers, kp)
		log.Printf("Publishing events to kafka topic %s", cfg.KafkaTopic)
	}

	app := &handlers.App{
		Store:  store,
		Creds:  auth.NewCredentials(store),
		Tokens: auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		Events: publishers,
		Hub:    hub,
	}

	if cfg.S3Endpoint != "" {
		images, err := media.New(media.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			Bucket:    cfg.S3Bucket,
		})
		if err != nil {
			log.Fatalf("S3 initialization failed: %v", err)
		}
		if err := images.EnsureBucket(ctx); err != nil {
			log.Fatalf("S3 ensure bucket: %v", err)
		}
		app.Images = images
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(app.Routes(cfg.CORSOrigin), "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		log.Printf("postboard listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Print("shutting down...")

	shCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}
