package toggleday

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"wellness-scheduler/api"
	"wellness-scheduler/pkg/response"
	"wellness-scheduler/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type DayToggler interface {
	ToggleDay(ctx context.Context, req *api.ToggleDayRequest) (int, error)
}

type Request struct {
	api.ToggleDayRequest
}

type Response struct {
	response.Response
	Updated int `json:"updated"`
}

func New(log *slog.Logger, toggler DayToggler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.toggleday.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if req.PsychologistID == "" || req.Date == "" {
			log.Error("psychologist_id or date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "psychologist_id and date are required"))
			return
		}

		updated, err := toggler.ToggleDay(r.Context(), &req.ToggleDayRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), err.Error()))
			return
		}

		if errors.Is(err, response.ErrSlotBooked) {
			log.Error("day has a booked slot")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.SLOT_BOOKED), "a booked slot on this date blocks the toggle"))
			return
		}

		if err != nil {
			log.Error("Failed to toggle day", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to toggle day"))
			return
		}

		log.Info("Day toggled", slog.Int("updated", updated))

		render.JSON(w, r, Response{Updated: updated})
	}
}
