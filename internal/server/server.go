package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/userpanel/adminserver/config"
	"github.com/userpanel/adminserver/internal/audit"
	"github.com/userpanel/adminserver/internal/auth"
	"github.com/userpanel/adminserver/internal/db"
	"github.com/userpanel/adminserver/internal/handlers"
	"github.com/userpanel/adminserver/internal/logging"
	"github.com/userpanel/adminserver/internal/services"
	"github.com/userpanel/adminserver/internal/store"
	"github.com/userpanel/adminserver/internal/views"
)

// Server wraps the HTTP server and its collaborators.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	audit      *audit.Recorder
	log        logging.Logger
}

// New constructs a Server: storage, auth core, audit trail, routes.
// The default admin account and administrators group are seeded here.
func New(ctx context.Context, cfg config.Config, log logging.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	groupRepo := store.NewGroupRepository(dbConn)
	userService := services.NewUserService(userRepo)
	groupService := services.NewGroupService(groupRepo)

	if cfg.Auth.UsingDefaultSecret() {
		log.Warn(ctx, "SECRET_KEY is unset: using the insecure built-in signing key; override it before production use")
	}

	codec := auth.NewCodec(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)
	issuer := auth.NewIssuer(codec, userService, cfg.Auth.EmailAuthEnabled, log)
	resolver := auth.NewResolver(codec, userService, log)

	renderer, err := views.New(log)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	auditBackend, err := audit.Open(ctx, cfg.Audit)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("open audit backend: %w", err)
	}
	recorder := audit.NewRecorder(auditBackend, log)

	if err := seedDefaults(ctx, userService, groupService, log); err != nil {
		_ = recorder.Close()
		_ = dbConn.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	authHandler := handlers.NewAuthHandler(userService, issuer, renderer, recorder, cfg.Auth, log)
	adminHandler := handlers.NewAdminHandler(userService, groupService, renderer, recorder, log)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, authHandler)
	handlers.AdminRouter(router, adminHandler, handlers.RequireUser(resolver))

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		audit:      recorder,
		log:        log,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.audit != nil {
		_ = s.audit.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
