package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"wellness-scheduler/api"
	"wellness-scheduler/pkg/response"
	"wellness-scheduler/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type LimitsUpdater interface {
	UpdateLimits(ctx context.Context, psychologistID string, req *api.BookingLimitsRequest) (*api.BookingLimitsResponse, error)
}

type Request struct {
	api.BookingLimitsRequest
}

type Response struct {
	response.Response
	*api.BookingLimitsResponse
}

func New(log *slog.Logger, updater LimitsUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.limits.update.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "psychologistId")
		if id == "" {
			log.Error("psychologistId is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "psychologistId is required"))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		limits, err := updater.UpdateLimits(r.Context(), id, &req.BookingLimitsRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), err.Error()))
			return
		}

		var belowUsage *response.LimitBelowUsageError
		if errors.As(err, &belowUsage) {
			log.Error("limit below current usage", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(string(response.LIMIT_BELOW_USAGE), belowUsage.Error()))
			return
		}

		if err != nil {
			log.Error("Failed to update booking limits", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update booking limits"))
			return
		}

		log.Info("Booking limits updated", slog.String("psychologist_id", id))

		render.JSON(w, r, Response{BookingLimitsResponse: limits})
	}
}
