package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/learnos/backend/internal/auth"
	"github.com/learnos/backend/internal/database"
	"github.com/learnos/backend/internal/decompose"
	"github.com/learnos/backend/internal/goals"
	"github.com/learnos/backend/internal/mastery"
	"github.com/learnos/backend/internal/middleware"
	"github.com/learnos/backend/internal/progress"
	"github.com/learnos/backend/internal/sessions"
	"github.com/rs/cors"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize stores and services
	goalStore := goals.NewStore(db)
	masteryStore := mastery.NewStore(db)
	sessionStore := sessions.NewStore(db)
	sessionService := sessions.NewService(goalStore, masteryStore, sessionStore)

	decomposer := decompose.NewDecomposer()

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	goalHandler := goals.NewHandler(goalStore, decomposer)
	sessionHandler := sessions.NewHandler(sessionService)
	progressHandler := progress.NewHandler(goalStore, masteryStore, sessionStore)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/goals", goalHandler.CreateGoal).Methods("POST")
	protected.HandleFunc("/goals/{goal_id}/graph", goalHandler.GetGraph).Methods("GET")
	protected.HandleFunc("/session/start", sessionHandler.StartSession).Methods("POST")
	protected.HandleFunc("/session/interact", sessionHandler.Interact).Methods("POST")
	protected.HandleFunc("/session/{session_id}/state", sessionHandler.GetState).Methods("GET")
	protected.HandleFunc("/progress", progressHandler.GetProgress).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
