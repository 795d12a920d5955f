package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/cors"

	"github.com/aivahq/aiva-backend/db"
	"github.com/aivahq/aiva-backend/internal/auth"
	"github.com/aivahq/aiva-backend/internal/cache"
	"github.com/aivahq/aiva-backend/internal/generator"
	"github.com/aivahq/aiva-backend/internal/handlers"
	"github.com/aivahq/aiva-backend/internal/middleware"
	"github.com/aivahq/aiva-backend/internal/repository"
	"github.com/aivahq/aiva-backend/internal/state"
	"github.com/aivahq/aiva-backend/internal/storage"
	"github.com/aivahq/aiva-backend/internal/workers"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Root context for background workers and graceful shutdown
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	store := repository.NewStore(conn)

	snapshotPath := os.Getenv("STATE_SNAPSHOT_PATH")
	if snapshotPath == "" {
		snapshotPath = "data/state.json"
	}
	snap, err := cache.Open(snapshotPath)
	if err != nil {
		log.Fatalf("Failed to open state snapshot: %v", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
	jwtExpiry := 24 * time.Hour
	if v := os.Getenv("JWT_EXPIRY_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			jwtExpiry = time.Duration(hours) * time.Hour
		}
	}
	authSvc := auth.NewService(store.Accounts, auth.NewJWTService(jwtSecret, jwtExpiry))

	session := state.NewSessionStore(snap)
	authSvc.OnAuthChange(session.HandleAuthChange)

	// Generation backend: Gemini when a key is configured, templates otherwise.
	var gen generator.Generator = generator.Mock{}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		g, err := generator.NewGemini(rootCtx, key)
		if err != nil {
			log.Fatalf("Failed to init Gemini client: %v", err)
		}
		gen = g
		log.Printf("[Generator] using Gemini backend")
	} else {
		log.Printf("[Generator] GEMINI_API_KEY not set, using template backend")
	}

	// Object storage is optional; uploads 503 without it.
	var uploader *storage.Uploader
	if os.Getenv("S3_BUCKET") != "" {
		uploader, err = storage.NewUploader(storage.Config{
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			Region:        os.Getenv("S3_REGION"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			Bucket:        os.Getenv("S3_BUCKET"),
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
			UsePathStyle:  os.Getenv("S3_USE_PATH_STYLE") == "true",
			Prefix:        os.Getenv("S3_PREFIX"),
		})
		if err != nil {
			log.Fatalf("Failed to init S3 uploader: %v", err)
		}
	} else {
		log.Printf("[Storage] S3_BUCKET not set, uploads disabled")
	}

	hub := handlers.NewHub()
	notifications := state.NewNotificationStore(store.Notifications, hub)
	companies := state.NewCompanyStore(store.Companies, snap, hub)
	posts := state.NewPostStore(store.Posts, snap, hub)
	h := handlers.New(store, authSvc, gen, uploader, companies, posts, notifications, hub)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	handlers.RegisterRoutes(h, r,
		middleware.NewAuthenticator(authSvc),
		middleware.NewSubscriptionEnforcer(store, notifications))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "18920"
	}

	srv := &http.Server{
		Handler:      handler,
		Addr:         ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go (&workers.ScheduledPostsWorker{
		Posts:         store.Posts,
		Notifications: notifications,
		Events:        hub,
		CheckInterval: intervalFromEnv("SCHEDULED_POSTS_INTERVAL_SECONDS", 30*time.Second),
	}).Start(rootCtx)

	go (&workers.NotificationCleanupWorker{
		Notifications: store.Notifications,
		CheckInterval: intervalFromEnv("NOTIFICATION_CLEANUP_INTERVAL_SECONDS", time.Hour),
	}).Start(rootCtx)

	go func() {
		<-stop
		log.Println("Shutting down server...")
		cancel()
		ctx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}

func intervalFromEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
