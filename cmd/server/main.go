package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tribofy/internal/config"
	"tribofy/internal/database"
	"tribofy/internal/engine"
	"tribofy/internal/handlers"
	"tribofy/internal/keepalive"
	"tribofy/internal/middleware"
	"tribofy/internal/utils"
	"tribofy/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongodb, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongodb.Close(ctx); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongodb.EnsureIndexes(indexCtx); err != nil {
		cancelIndexes()
		log.Fatalf("Failed to create database indexes: %v", err)
	}
	cancelIndexes()

	metrics := utils.NewMetricsCollector()
	system := actor.NewActorSystem()
	appEngine := engine.NewEngine(system, metrics, mongodb)

	hub := websocket.NewHub()
	go hub.Run()

	server := handlers.NewServer(
		system,
		appEngine,
		metrics,
		mongodb,
		middleware.NewTokenManager(cfg.JWTSecret),
		middleware.DefaultCORSConfig(cfg.AllowedOrigins),
		hub,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go keepalive.Run(ctx, cfg.KeepAlive)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: server.Routes(),
	}

	go func() {
		log.Printf("Starting server on %s", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}
