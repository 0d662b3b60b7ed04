// Package server sets up the HTTP server, router, and all route definitions.
//
// New is the composition root: it opens the database and wires
//
//	sqlite.DB → repositories → services → handlers → routes
//
// so nothing below it constructs its own dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/handler"
	"github.com/sakif/bloglist/internal/middleware"
	sqliteRepo "github.com/sakif/bloglist/internal/repository/sqlite"
	"github.com/sakif/bloglist/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string
	TokenTTL   time.Duration // zero means auth.DefaultTokenTTL
	BcryptCost int           // out of range means auth.DefaultCost
}

// Server represents the HTTP server and all its dependencies.
// It owns the database connection and closes it on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, wires every layer and registers the routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = auth.DefaultTokenTTL
	}
	tokens, err := auth.NewTokenServiceWithTTL(cfg.JWTSecret, ttl)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens, auth.NewPasswordServiceWithCost(cfg.BcryptCost))

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// GET    /api/blogs          → list blogs
// GET    /api/blogs/stats    → aggregate figures
// GET    /api/blogs/{id}     → one blog
// PUT    /api/blogs/{id}     → replace likes
// POST   /api/blogs          → create blog          [auth]
// DELETE /api/blogs/{id}     → delete own blog      [auth]
// GET    /api/users          → list users with blogs
// POST   /api/users          → register
// POST   /api/login          → issue token
// GET    /healthz            → database reachable
//
// Middleware order: RequestID must precede Logger so each log line
// carries the id. Recoverer sits inside Logger so a recovered panic is
// still logged as a 500.
func (s *Server) setupRoutes(tokens *auth.TokenService, passwords *auth.PasswordService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	blogRepo := s.db.Blogs()
	userRepo := s.db.Users()

	blogService := service.NewBlogService(blogRepo, userRepo, s.logger)
	userService := service.NewUserService(userRepo, blogRepo, passwords, s.logger)
	authService := service.NewAuthService(userRepo, tokens, passwords, s.logger)

	blogHandler := handler.NewBlogHandler(blogService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	loginHandler := handler.NewLoginHandler(authService, s.logger)

	requireUser := auth.RequireUser(auth.NewAuthorizer(tokens, userRepo), handler.WriteError)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", blogHandler.HandleList)
			r.Get("/stats", blogHandler.HandleStats)
			r.Get("/{id}", blogHandler.HandleGet)
			// TODO: move into the requireUser group once clients send a token on like.
			r.Put("/{id}", blogHandler.HandleUpdateLikes)

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/", blogHandler.HandleCreate)
				r.Delete("/{id}", blogHandler.HandleDelete)
			})
		})

		r.Get("/users", userHandler.HandleList)
		r.Post("/users", userHandler.HandleRegister)
		r.Post("/login", loginHandler.HandleLogin)
	})

	s.router.NotFound(handler.HandleUnknownEndpoint)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on the way out.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
