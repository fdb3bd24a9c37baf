package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"postStreakAPI/handlers"
	"postStreakAPI/internal/chat"
	"postStreakAPI/internal/config"
	"postStreakAPI/internal/jobs"
	"postStreakAPI/internal/store"
	"postStreakAPI/middleware"
	"postStreakAPI/services"

	_ "net/http/pprof"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Fatalf("Failed to open store at %s: %v", cfg.StorePath, err)
	}
	defer func() {
		log.Println("Closing store...")
		st.Close()
	}()
	log.Printf("Store opened at %s", cfg.StorePath)

	var chatClient chat.Client = chat.NewSlackClient(cfg.SlackBotToken)
	if cfg.RedisURL != "" {
		cache, err := chat.NewProfileCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Could not initialize Redis profile cache: %v", err)
		} else {
			chatClient = chat.NewCachedClient(chatClient, cache)
			defer cache.Close()
			log.Println("Redis profile cache initialized")
		}
	}

	middleware.InitPrometheus()
	services.InitMetrics()

	notificationService := services.NewNotificationService(st, chatClient, cfg.LeaderboardURL)
	streakService := services.NewStreakService(st, chatClient, notificationService, cfg.TargetChannel)
	maintenanceService := services.NewMaintenanceService(st, cfg.BackupDir)

	scheduler := jobs.NewScheduler()
	if err := scheduler.Register(jobs.NewFuncJob("reconciler", cfg.ReconcileCron, maintenanceService.ReconcileStreaks)); err != nil {
		log.Fatalf("Failed to schedule reconciler: %v", err)
	}
	if err := scheduler.Register(jobs.NewFuncJob("backup", cfg.BackupCron, maintenanceService.BackupStore)); err != nil {
		log.Fatalf("Failed to schedule backup: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	eventsHandler := handlers.NewEventsHandler(streakService, cfg.SlackSigningSecret)
	leaderboardHandler := handlers.NewLeaderboardHandler(streakService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	assetsDir := "./assets"
	fs := http.FileServer(http.Dir(assetsDir))
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", fs))
	log.Printf("Serving static files from %s at /assets/", assetsDir)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := st.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "store unavailable"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "postStreak-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/slack/events", eventsHandler.HandleSlackEvents).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/leaderboard", leaderboardHandler.GetLeaderboard).Methods("GET")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
