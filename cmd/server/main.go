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

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/study-ai/backend/internal/assistant"
	"github.com/study-ai/backend/internal/attempts"
	"github.com/study-ai/backend/internal/auth"
	"github.com/study-ai/backend/internal/config"
	"github.com/study-ai/backend/internal/database"
	"github.com/study-ai/backend/internal/gateway"
	"github.com/study-ai/backend/internal/middleware"
	"github.com/study-ai/backend/internal/quiz"
)

func main() {
	cfg := config.FromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DBDriver); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Model gateway. The server still starts without one so that auth,
	// attempts and diagnostics keep working.
	var (
		completer gateway.Completer
		lister    quiz.ModelLister
	)
	gw, err := gateway.New(ctx, cfg.Gateway)
	if err != nil {
		log.Printf("WARNING: AI gateway unavailable: %v", err)
		completer = gateway.Unconfigured(err)
	} else {
		log.Printf("AI gateway: provider=%s models=%v", gw.Provider(), gw.Models())
		completer, lister = gw, gw
	}

	// Initialize services and handlers
	secret := []byte(cfg.JWTSecret)
	authHandler := auth.NewHandler(db, secret)
	quizHandler := quiz.NewHandler(quiz.NewService(completer, cfg.Quiz.MaxCount), cfg.Gateway, lister)
	assistantHandler := assistant.NewHandler(assistant.NewService(completer))
	attemptsHandler := attempts.NewHandler(attempts.NewService(attempts.NewStore(db)))

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/ai/health", quizHandler.Health).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(secret))
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/ai/generate-quiz", quizHandler.GenerateQuiz).Methods("POST")
	protected.HandleFunc("/ai/chat", assistantHandler.Chat).Methods("POST")
	protected.HandleFunc("/ai/usage", quizHandler.Usage).Methods("GET")
	protected.HandleFunc("/ai/diagnostics", quizHandler.Diagnostics).Methods("GET")
	protected.HandleFunc("/ai/analyze-image", quizHandler.AnalyzeImage).Methods("POST")

	protected.HandleFunc("/quiz-attempts", attemptsHandler.Create).Methods("POST")
	protected.HandleFunc("/quiz-attempts", attemptsHandler.List).Methods("GET")
	protected.HandleFunc("/quiz-attempts/stats", attemptsHandler.Stats).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("WARNING: shutdown: %v", err)
		}
	}()

	log.Printf("Server starting on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
