package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wellness-scheduler/internal/config"
	"wellness-scheduler/internal/holidays"
	availCreate "wellness-scheduler/internal/http-server/handlers/availability/create"
	availGet "wellness-scheduler/internal/http-server/handlers/availability/get"
	availPopulate "wellness-scheduler/internal/http-server/handlers/availability/populate"
	availToggleDay "wellness-scheduler/internal/http-server/handlers/availability/toggleday"
	availUpdate "wellness-scheduler/internal/http-server/handlers/availability/update"
	bookingCancel "wellness-scheduler/internal/http-server/handlers/bookings/cancel"
	bookingComplete "wellness-scheduler/internal/http-server/handlers/bookings/complete"
	bookingConfirm "wellness-scheduler/internal/http-server/handlers/bookings/confirm"
	bookingCreate "wellness-scheduler/internal/http-server/handlers/bookings/create"
	bookingList "wellness-scheduler/internal/http-server/handlers/bookings/list"
	bookingReassign "wellness-scheduler/internal/http-server/handlers/bookings/reassign"
	bookingReschedule "wellness-scheduler/internal/http-server/handlers/bookings/reschedule"
	holidayCreate "wellness-scheduler/internal/http-server/handlers/holidays/create"
	holidayDelete "wellness-scheduler/internal/http-server/handlers/holidays/delete"
	holidayList "wellness-scheduler/internal/http-server/handlers/holidays/list"
	limitsGet "wellness-scheduler/internal/http-server/handlers/limits/get"
	limitsUpdate "wellness-scheduler/internal/http-server/handlers/limits/update"
	"wellness-scheduler/internal/lock"
	svc "wellness-scheduler/internal/service"
	"wellness-scheduler/internal/storage/postgres"
	"wellness-scheduler/pkg/handlers/slogpretty"
	"wellness-scheduler/pkg/middleware/mwlogger"
	"wellness-scheduler/pkg/sl"

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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
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

	calendar := holidays.New(storage)

	service := svc.NewService(storage, locker, calendar, cfg.Scheduling)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Availability
	router.Post("/availability", availCreate.New(log, service))
	router.Patch("/availability/toggle-day", availToggleDay.New(log, service))
	router.Post("/availability/populate-n-days", availPopulate.New(log, service))
	router.Get("/availability/{psychologistId}", availGet.New(log, service))
	router.Patch("/availability/{slotId}", availUpdate.New(log, service))

	// Holidays
	router.Get("/holidays", holidayList.New(log, service))
	router.Post("/holidays", holidayCreate.New(log, service))
	router.Delete("/holidays/{id}", holidayDelete.New(log, service))

	// Bookings
	router.Post("/bookings", bookingCreate.New(log, service))
	router.Post("/bookings/reschedule", bookingReschedule.New(log, service))
	router.Post("/bookings/{bookingId}/confirm", bookingConfirm.New(log, service))
	router.Post("/bookings/{bookingId}/cancel", bookingCancel.New(log, service))
	router.Post("/bookings/{bookingId}/complete", bookingComplete.New(log, service))
	router.Post("/bookings/{bookingId}/reassign", bookingReassign.New(log, service))
	router.Get("/bookings/psychologist-bookings/{psychologistId}", bookingList.NewForPsychologist(log, service))
	router.Get("/bookings/my-bookings", bookingList.NewForClient(log, service))

	// Booking limits
	router.Get("/booking-limits/{psychologistId}", limitsGet.New(log, service))
	router.Put("/booking-limits/{psychologistId}", limitsUpdate.New(log, service))

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
	} else {
		log.Debug("Storage is nil, nothing to close")
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
