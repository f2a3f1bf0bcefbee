package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onePercentAPI/handlers"
	"onePercentAPI/internal/notification"
	"onePercentAPI/internal/workers"
	"onePercentAPI/middleware"
	"onePercentAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	userService         *services.UserService
	streakService       *services.StreakService
	challengeService    *services.ChallengeService
	trainerService      *services.TrainerService
	demoService         *services.DemoService
	journalService      *services.JournalService
	plannerService      *services.PlannerService
	statsService        *services.StatsService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	notificationService = services.NewNotificationService(dbPool)
	userService = services.NewUserService(dbPool)
	streakService = services.NewStreakService(dbPool)
	streakService.SetNotifier(notificationService)
	challengeService = services.NewChallengeService(dbPool, streakService)
	trainerService = services.NewTrainerService(dbPool, challengeService)
	demoService = services.NewDemoService(dbPool)
	journalService = services.NewJournalService(dbPool)
	plannerService = services.NewPlannerService(dbPool)
	statsService = services.NewStatsService(dbPool)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, userService)
	trainerHandler := handlers.NewTrainerHandler(trainerService)
	demoHandler := handlers.NewDemoHandler(demoService)
	journalHandler := handlers.NewJournalHandler(journalService, userService)
	plannerHandler := handlers.NewPlannerHandler(plannerService, userService)
	statsHandler := handlers.NewStatsHandler(statsService, streakService, userService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	workers.StartStreakRiskWorker(dbPool, notificationService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "onePercent-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public: the landing-page demo needs no account
	api.HandleFunc("/demo/challenge", demoHandler.GetDemoChallenge).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")

	protected.HandleFunc("/challenges/today", challengeHandler.GetTodayChallenge).Methods("GET")
	protected.HandleFunc("/challenges/custom", challengeHandler.CreateCustomChallenge).Methods("POST")
	protected.HandleFunc("/challenges/history", challengeHandler.GetHistory).Methods("GET")
	protected.HandleFunc("/challenges/{id}/complete", challengeHandler.CompleteChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}/start", challengeHandler.StartChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}/snooze", challengeHandler.SnoozeChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}/skip", challengeHandler.SkipChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}", challengeHandler.DeleteChallenge).Methods("DELETE")

	protected.HandleFunc("/trainer/chat", trainerHandler.Chat).Methods("POST")
	protected.HandleFunc("/trainer/settings", trainerHandler.GetSettings).Methods("GET")
	protected.HandleFunc("/trainer/settings", trainerHandler.UpdateSettings).Methods("PUT")
	protected.HandleFunc("/trainer/history", trainerHandler.GetHistory).Methods("GET")

	protected.HandleFunc("/journal", journalHandler.CreateEntry).Methods("POST")
	protected.HandleFunc("/journal", journalHandler.GetEntries).Methods("GET")
	protected.HandleFunc("/journal/{id}", journalHandler.UpdateEntry).Methods("PUT")
	protected.HandleFunc("/journal/{id}", journalHandler.DeleteEntry).Methods("DELETE")

	protected.HandleFunc("/planner/todos", plannerHandler.CreateTodo).Methods("POST")
	protected.HandleFunc("/planner/todos", plannerHandler.GetTodos).Methods("GET")
	protected.HandleFunc("/planner/todos/{id}/toggle", plannerHandler.ToggleTodo).Methods("POST")
	protected.HandleFunc("/planner/todos/{id}", plannerHandler.DeleteTodo).Methods("DELETE")
	protected.HandleFunc("/planner/entries", plannerHandler.CreateEntry).Methods("POST")
	protected.HandleFunc("/planner/week", plannerHandler.GetWeek).Methods("GET")
	protected.HandleFunc("/planner/entries/{id}", plannerHandler.DeleteEntry).Methods("DELETE")

	protected.HandleFunc("/stats", statsHandler.GetUserStats).Methods("GET")
	protected.HandleFunc("/stats/streak", statsHandler.GetStreak).Methods("GET")
	protected.HandleFunc("/stats/days", statsHandler.GetDaysCompleted).Methods("GET")
	protected.HandleFunc("/stats/calendar", statsHandler.GetCalendar).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/{id}", notificationHandler.DeleteNotification).Methods("DELETE")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
