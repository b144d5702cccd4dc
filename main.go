// api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"topicquiz/api/analysis"
	"topicquiz/api/database"
	"topicquiz/api/handlers"
	"topicquiz/api/middleware"
	"topicquiz/api/store"
	"topicquiz/api/topics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Record store (sessions and responses) ---
	dbClient, err := database.NewRecordDB()
	if err != nil {
		log.Fatalf("Failed to initialize record store: %v", err)
	}
	defer dbClient.Close()

	// --- ClickHouse mirror (optional, time-series stats) ---
	var events handlers.ResponseEvents
	chClient, err := database.NewClickHouseDB()
	switch {
	case errors.Is(err, database.ErrClickHouseNotConfigured):
		log.Println("CLICKHOUSE_HOST not set. Time-series statistics are disabled.")
	case err != nil:
		log.Fatalf("Failed to initialize ClickHouse database: %v", err)
	default:
		defer chClient.Close()
		events = store.NewResponseEventStore(chClient)
	}

	cacheSize := 8
	if v := os.Getenv("ANALYSIS_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("Invalid ANALYSIS_CACHE_SIZE %q: must be a positive integer", v)
		}
		cacheSize = n
	}
	cache, err := analysis.NewCache(cacheSize)
	if err != nil {
		log.Fatalf("Failed to initialize analysis cache: %v", err)
	}

	universe := topics.Default()
	sessionStore := store.NewSessionStore(dbClient)

	sessionHandlers := handlers.NewSessionHandlers(sessionStore, events, universe)
	analysisHandlers := handlers.NewAnalysisHandlers(sessionStore, universe, cache)
	statsHandlers := handlers.NewStatsHandlers(events)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	handlers.RegisterRoutes(r, sessionHandlers, analysisHandlers, statsHandlers)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Topic quiz API starting on http://localhost:%s (%d topics)", port, universe.Len())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
