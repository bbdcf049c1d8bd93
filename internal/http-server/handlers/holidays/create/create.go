package create

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

type HolidayCreator interface {
	CreateHoliday(ctx context.Context, req *api.HolidayRequest) (*api.HolidayResponse, error)
}

type Request struct {
	api.HolidayRequest
}

type Response struct {
	response.Response
	Holiday *api.HolidayResponse `json:"holiday"`
}

func New(log *slog.Logger, creator HolidayCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.holidays.create.New"

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

		if req.Date == "" || req.Description == "" {
			log.Error("date or description is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date and description are required"))
			return
		}

		holiday, err := creator.CreateHoliday(r.Context(), &req.HolidayRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), err.Error()))
			return
		}

		if err != nil {
			log.Error("Failed to create holiday", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create holiday"))
			return
		}

		log.Info("Holiday created", slog.String("id", holiday.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Holiday: holiday})
	}
}
