package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/teashop/apiserver/config"
	"github.com/teashop/apiserver/internal/db"
	"github.com/teashop/apiserver/internal/handlers"
	"github.com/teashop/apiserver/internal/logger"
	"github.com/teashop/apiserver/internal/metrics"
	"github.com/teashop/apiserver/internal/mq"
	"github.com/teashop/apiserver/internal/services"
	"github.com/teashop/apiserver/internal/storage"
	"github.com/teashop/apiserver/internal/store"
)

// Server wraps the HTTP server, router, and process-lifetime resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.Publisher
}

// New constructs a Server with its full dependency graph: database,
// repositories, optional broker and object storage, metrics, services,
// and routes.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger.SetupDefault(os.Stdout)

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	itemRepo := store.NewItemRepository(dbConn)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	var events *mq.Publisher
	mqBackend, err := mq.NewBackend(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if mqBackend != nil {
		events = mq.NewPublisher(mqBackend, cfg.MQ.EventChannel)
	}

	var reportStorage *storage.Storage
	storageBackend, err := storage.NewBackend(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if storageBackend != nil {
		reportStorage = storage.NewStorage(storageBackend)
		if err := reportStorage.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	userService := services.NewUserService(userRepo)
	inventoryService := services.NewInventoryService(itemRepo, collector, events, cfg.LowStockThreshold, slog.Default())
	reportService := services.NewReportService(itemRepo, reportStorage)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Get("/ping", handlers.Ping(dbConn))
	router.Method(http.MethodGet, "/metrics", metrics.Handler(registry))
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, cfg.JWT)
	})
	router.Route("/api/inventory", func(r chi.Router) {
		handlers.InventoryRouter(r, inventoryService, reportService)
	})

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
		events:     events,
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
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
