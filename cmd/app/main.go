package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"salon-service/internal/config"
	availCreate "salon-service/internal/http-server/handlers/availability/create"
	availDelete "salon-service/internal/http-server/handlers/availability/delete"
	availGet "salon-service/internal/http-server/handlers/availability/get"
	availUpdate "salon-service/internal/http-server/handlers/availability/update"
	bookingCancel "salon-service/internal/http-server/handlers/bookings/cancel"
	bookingCreate "salon-service/internal/http-server/handlers/bookings/create"
	bookingGet "salon-service/internal/http-server/handlers/bookings/get"
	bookingUpdate "salon-service/internal/http-server/handlers/bookings/update"
	tplApply "salon-service/internal/http-server/handlers/templates/apply"
	tplCreate "salon-service/internal/http-server/handlers/templates/create"
	tplDelete "salon-service/internal/http-server/handlers/templates/delete"
	tplGet "salon-service/internal/http-server/handlers/templates/get"
	tplUpdate "salon-service/internal/http-server/handlers/templates/update"
	timeslotsGet "salon-service/internal/http-server/handlers/timeslots/get"
	"salon-service/internal/lock"
	"salon-service/internal/notify"
	svc "salon-service/internal/service"
	"salon-service/internal/storage/postgres"
	slogpretty "salon-service/pkg/handlers/slogPretty"
	"salon-service/pkg/middleware/mwLogger"
	"salon-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Actor-ID, X-Actor-Role")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	notifier := notify.NewLogSender(log)

	service := svc.NewService(storage, locker, notifier)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Timeslots
	router.Get("/timeslots", timeslotsGet.New(log, service))

	// Bookings
	router.Post("/bookings", bookingCreate.New(log, service))
	router.Get("/bookings/{id}", bookingGet.New(log, service))
	router.Patch("/bookings/{id}", bookingUpdate.New(log, service))
	router.Delete("/bookings/{id}", bookingCancel.New(log, service))

	// Availability Templates
	router.Post("/templates", tplCreate.New(log, service))
	router.Get("/templates/{id}", tplGet.New(log, service))
	router.Put("/templates/{id}", tplUpdate.New(log, service))
	router.Delete("/templates/{id}", tplDelete.New(log, service))
	router.Post("/templates/{id}/apply", tplApply.New(log, service))

	// Availability
	router.Post("/availability", availCreate.New(log, service))
	router.Get("/availability", availGet.New(log, service))
	router.Put("/availability/{id}", availUpdate.New(log, service))
	router.Delete("/availability/{id}", availDelete.New(log, service))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		} else {
			log.Info("Storage closed")
		}
	}

	if locker != nil {
		if err := locker.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
