package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/taskhive/taskhive/pkg/db"
	"github.com/taskhive/taskhive/pkg/logging"
	loggingmw "github.com/taskhive/taskhive/pkg/middleware/logging"
	"github.com/taskhive/taskhive/pkg/tokens"
	"github.com/taskhive/taskhive/services/auth/internal/config"
	"github.com/taskhive/taskhive/services/auth/internal/events"
	"github.com/taskhive/taskhive/services/auth/internal/httpserver"
	"github.com/taskhive/taskhive/services/auth/internal/models"
	"github.com/taskhive/taskhive/services/auth/internal/repo"
	"github.com/taskhive/taskhive/services/auth/internal/service"
	"github.com/taskhive/taskhive/services/auth/internal/tokenstore"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	signer, err := tokens.NewSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		log.Fatalf("signer config: %v", err)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}
	if err := gormDB.AutoMigrate(&models.User{}); err != nil {
		cancel()
		log.Fatalf("db migrate error: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(initCtx).Err(); err != nil {
		cancel()
		log.Fatalf("redis ping error: %v", err)
	}
	cancel()

	producer := events.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	svc := &service.TokenService{
		Users:      &repo.UserRepo{DB: gormDB},
		Store:      tokenstore.New(rdb),
		Signer:     signer,
		Events:     producer,
		RefreshTTL: cfg.RefreshTTL,
	}

	e := echo.New()
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(echomw.Recover(), echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:     &httpserver.AuthHTTP{Svc: svc},
		ValidateHandler: &httpserver.ValidateHTTP{Signer: signer},
	})

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
	if err := rdb.Close(); err != nil {
		log.Printf("redis close: %v", err)
	}
}
