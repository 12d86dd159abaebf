package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/sales-atlas/pkg/handlers/dashboard"
	"github.com/de-tools/sales-atlas/pkg/services/dashboard"

	salesatlasmiddleware "github.com/de-tools/sales-atlas/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Dashboard *dashboard.Dashboard
	Logger    zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) (*chi.Mux, error) {
	h, err := handlers.NewHandler(config.Dependencies.Dashboard)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(salesatlasmiddleware.Logger(&config.Dependencies.Logger))
	router.Use(middleware.Recoverer)

	router.Get("/", h.Index)
	router.Get("/healthz", h.Health)
	router.Get("/charts/{slot}.png", h.Chart)

	router.Route("/ui", func(r chi.Router) {
		r.Get("/state", h.State)
		r.Post("/reload", h.Reload)
		r.Post("/theme", h.Theme)
		r.Post("/upload/{kind}", h.Upload)
		r.Post("/customer", h.AddCustomer)
		r.Post("/product", h.AddProduct)
	})

	return router, nil
}

func NewWebAPI(config Config) (*WebAPI, error) {
	router, err := ConfigureRouter(config)
	if err != nil {
		return nil, err
	}

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router: router,
		logger: &config.Dependencies.Logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
	}, nil
}

// Start serves until the server fails, ctx is cancelled or the process
// receives SIGINT or SIGTERM.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")
	case <-ctx.Done():
		w.logger.Info().Msg("context cancelled, shutting down")
	}

	// Give outstanding requests a deadline for completion.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
	defer cancel()

	err := w.server.Shutdown(shutdownCtx)
	if err != nil {
		w.logger.Error().Err(err).Msg("graceful shutdown failed")
		err = w.server.Close()
	}

	return err
}
