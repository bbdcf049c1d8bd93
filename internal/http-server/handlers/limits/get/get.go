package get

import (
	"context"
	"log/slog"
	"net/http"

	"wellness-scheduler/api"
	"wellness-scheduler/pkg/response"
	"wellness-scheduler/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type LimitsGetter interface {
	GetLimits(ctx context.Context, psychologistID string) (*api.BookingLimitsResponse, error)
}

type Response struct {
	response.Response
	*api.BookingLimitsResponse
}

func New(log *slog.Logger, getter LimitsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.limits.get.New"

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

		limits, err := getter.GetLimits(r.Context(), id)
		if err != nil {
			log.Error("Failed to get booking limits", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get booking limits"))
			return
		}

		render.JSON(w, r, Response{BookingLimitsResponse: limits})
	}
}
