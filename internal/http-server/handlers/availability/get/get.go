package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"wellness-scheduler/api"
	"wellness-scheduler/pkg/response"
	"wellness-scheduler/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type AvailabilityProvider interface {
	GetAvailability(ctx context.Context, psychologistID string, from, to *time.Time) ([]*api.SlotResponse, error)
}

type Response struct {
	response.Response
	Slots []*api.SlotResponse `json:"slots"`
}

func New(log *slog.Logger, provider AvailabilityProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		psychologistID := chi.URLParam(r, "psychologistId")
		if psychologistID == "" {
			log.Error("psychologist id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "psychologist id is required"))
			return
		}

		var from, to *time.Time
		if v := r.URL.Query().Get("from"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				log.Error("invalid from", sl.Err(err))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid from"))
				return
			}
			from = &t
		}
		if v := r.URL.Query().Get("to"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				log.Error("invalid to", sl.Err(err))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid to"))
				return
			}
			to = &t
		}

		slots, err := provider.GetAvailability(r.Context(), psychologistID, from, to)
		if errors.Is(err, response.ErrNotFound) {
			log.Error("psychologist not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}
		if err != nil {
			log.Error("Failed to list availability", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list availability"))
			return
		}

		render.JSON(w, r, Response{Slots: slots})
	}
}
