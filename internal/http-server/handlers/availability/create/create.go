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

type SlotCreator interface {
	CreateSlot(ctx context.Context, req *api.SlotCreateRequest) (*api.SlotResponse, error)
}

type Request struct {
	api.SlotCreateRequest
}

type Response struct {
	response.Response
	Slot api.SlotResponse `json:"slot,omitempty"`
}

func New(log *slog.Logger, creator SlotCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.create.New"

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

		if req.PsychologistID == "" {
			log.Error("psychologist_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "psychologist_id is required"))
			return
		}

		if req.TimeSlot == "" {
			log.Error("time_slot is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "time_slot is required"))
			return
		}

		slot, err := creator.CreateSlot(r.Context(), &req.SlotCreateRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), err.Error()))
			return
		}

		if errors.Is(err, response.ErrHolidayBlocked) {
			log.Error("date is holiday-blocked")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.HOLIDAY_BLOCKED), "date is blocked by a holiday"))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("slot already exists")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "slot already exists"))
			return
		}

		if err != nil {
			log.Error("Failed to create slot", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create slot"))
			return
		}

		log.Info("Slot created", slog.Any("slot", slot))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Slot: *slot})
	}
}
