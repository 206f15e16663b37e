// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/config"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/handlers"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/middleware"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/ratelimit"
	bookrepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/book"
	exchangerepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/exchange"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/reading"
	trackerrepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/tracker"
	userrepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/user"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/ai"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/ask"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/contextwindow"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/library"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/markdown"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/tracker"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/user_services"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Book{},
		&domain.Character{},
		&domain.Location{},
		&domain.Chapter{},
		&domain.Note{},
		&domain.ChapterBoundary{},
		&domain.SummaryRecord{},
		&domain.RawChunk{},
		&domain.AskExchange{},
	); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	userRepo := userrepo.NewGormUserRepository(db)
	bookRepo := bookrepo.NewGormBookRepository(db)
	characterRepo := trackerrepo.NewGormCharacterRepository(db)
	locationRepo := trackerrepo.NewGormLocationRepository(db)
	chapterRepo := trackerrepo.NewGormChapterRepository(db)
	noteRepo := trackerrepo.NewGormNoteRepository(db)
	exchangeRepo := exchangerepo.NewGormExchangeRepository(db)
	evidenceRepo := reading.NewGormEvidenceRepository(db)

	// --- Services ---
	lockoutService := user_services.NewLockoutService(userRepo, services.NewLogger("lockout"))
	authService := user_services.NewAuthService(userRepo, lockoutService,
		cfg.JWTSecretKey, os.Getenv("ADMIN_USERNAME"), services.NewLogger("auth"))
	balanceService := user_services.NewBalanceService(userRepo)

	aiConfig := ai.DefaultConfig()
	aiConfig.LLMKey = cfg.LLMAPIKey
	aiConfig.LLMBaseURL = cfg.LLMBaseURL
	aiConfig.Model = cfg.LLMModel
	if err := aiConfig.Validate(); err != nil && cfg.Environment == "production" {
		log.Fatalf("FATAL: AI configuration invalid: %v", err)
	}
	provider := ai.NewOpenAIProvider(aiConfig)

	retrievalService, err := contextwindow.NewService(evidenceRepo, &contextwindow.Config{
		MaxContextTokens:     cfg.MaxContextTokens,
		PageFocusedMaxTokens: cfg.PageFocusedMaxTokens,
		DesiredK:             contextwindow.KRange{Min: cfg.DesiredKMin, Max: cfg.DesiredKMax},
	}, services.NewLogger("contextwindow"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize retrieval service: %v", err)
	}

	libraryService, err := library.NewService(bookRepo, evidenceRepo, exchangeRepo,
		cfg.UploadDir, services.NewLogger("library"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize library service: %v", err)
	}

	trackerService, err := tracker.NewService(libraryService,
		characterRepo, locationRepo, chapterRepo, noteRepo, services.NewLogger("tracker"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize tracker service: %v", err)
	}

	askService, err := ask.NewService(libraryService, retrievalService, balanceService,
		provider, exchangeRepo, services.NewLogger("ask"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize ask service: %v", err)
	}

	markdownRenderer := markdown.NewRenderer()

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, balanceService)
	bookHandler := handlers.NewBookHandler(libraryService)
	trackerHandler := handlers.NewTrackerHandler(trackerService, markdownRenderer)
	askHandler := handlers.NewAskHandler(askService, markdownRenderer)
	adminHandler := handlers.NewAdminHandler(userRepo, balanceService)
	healthHandler := handlers.NewHealthHandler(provider)

	// --- Rate Limiters ---
	authLimiter := ratelimit.New(ratelimit.AuthConfig())
	askLimiter := ratelimit.New(ratelimit.AskConfig())
	defer authLimiter.Close()
	defer askLimiter.Close()

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(authService)
	adminMiddleware := middleware.RequireAdmin(userRepo)

	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	authRoutes := r.PathPrefix("/auth").Subrouter()
	authRoutes.Use(middleware.RateLimitMiddleware(authLimiter, "auth"))
	authRoutes.Use(middleware.AuthSuccessMiddleware(authLimiter, "auth"))
	authRoutes.HandleFunc("/register", authHandler.Register).Methods("POST")
	authRoutes.HandleFunc("/login", authHandler.Login).Methods("POST")
	authRoutes.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	// --- Protected API ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")

	api.HandleFunc("/books", bookHandler.ListBooks).Methods("GET")
	api.HandleFunc("/books", bookHandler.UploadBook).Methods("POST")
	api.HandleFunc("/books/{id:[0-9]+}", bookHandler.GetBook).Methods("GET")
	api.HandleFunc("/books/{id:[0-9]+}", bookHandler.DeleteBook).Methods("DELETE")
	api.HandleFunc("/books/{id:[0-9]+}/progress", bookHandler.UpdateProgress).Methods("PUT")
	api.HandleFunc("/books/{id:[0-9]+}/ingest", bookHandler.IngestEvidence).Methods("POST")

	api.HandleFunc("/books/{id:[0-9]+}/characters", trackerHandler.ListCharacters).Methods("GET")
	api.HandleFunc("/books/{id:[0-9]+}/characters", trackerHandler.CreateCharacter).Methods("POST")
	api.HandleFunc("/books/{id:[0-9]+}/characters/{characterID:[0-9]+}", trackerHandler.UpdateCharacter).Methods("PUT")
	api.HandleFunc("/books/{id:[0-9]+}/characters/{characterID:[0-9]+}", trackerHandler.DeleteCharacter).Methods("DELETE")

	api.HandleFunc("/books/{id:[0-9]+}/locations", trackerHandler.ListLocations).Methods("GET")
	api.HandleFunc("/books/{id:[0-9]+}/locations", trackerHandler.CreateLocation).Methods("POST")
	api.HandleFunc("/books/{id:[0-9]+}/locations/{locationID:[0-9]+}", trackerHandler.UpdateLocation).Methods("PUT")
	api.HandleFunc("/books/{id:[0-9]+}/locations/{locationID:[0-9]+}", trackerHandler.DeleteLocation).Methods("DELETE")

	api.HandleFunc("/books/{id:[0-9]+}/chapters", trackerHandler.ListChapters).Methods("GET")
	api.HandleFunc("/books/{id:[0-9]+}/chapters", trackerHandler.CreateChapter).Methods("POST")
	api.HandleFunc("/books/{id:[0-9]+}/chapters/{chapterID:[0-9]+}", trackerHandler.UpdateChapter).Methods("PUT")
	api.HandleFunc("/books/{id:[0-9]+}/chapters/{chapterID:[0-9]+}", trackerHandler.DeleteChapter).Methods("DELETE")

	api.HandleFunc("/books/{id:[0-9]+}/notes", trackerHandler.ListNotes).Methods("GET")
	api.HandleFunc("/books/{id:[0-9]+}/notes", trackerHandler.CreateNote).Methods("POST")
	api.HandleFunc("/books/{id:[0-9]+}/notes/{noteID:[0-9]+}", trackerHandler.UpdateNote).Methods("PUT")
	api.HandleFunc("/books/{id:[0-9]+}/notes/{noteID:[0-9]+}", trackerHandler.DeleteNote).Methods("DELETE")

	askRoutes := api.PathPrefix("/books/{id:[0-9]+}").Subrouter()
	askRoutes.Use(middleware.RateLimitMiddleware(askLimiter, "ask"))
	askRoutes.HandleFunc("/ask", askHandler.AskQuestion).Methods("POST")
	askRoutes.HandleFunc("/ask/stream", askHandler.StreamQuestion).Methods("POST")
	api.HandleFunc("/books/{id:[0-9]+}/exchanges", askHandler.History).Methods("GET")

	// --- Admin API ---
	adminRoutes := r.PathPrefix("/api/admin").Subrouter()
	adminRoutes.Use(authMiddleware)
	adminRoutes.Use(adminMiddleware)
	adminRoutes.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	adminRoutes.HandleFunc("/users/{id:[0-9]+}/credits", adminHandler.AddCredits).Methods("POST")

	// --- Server Configuration ---
	port := ":8080"
	if cfg.ServerPort != "" {
		port = ":" + cfg.ServerPort
	}
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("TaleLeaf reading companion starting on port %s", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
