package reassign

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

type BookingReassigner interface {
	ReassignBooking(ctx context.Context, bookingID string, req *api.BookingReassignRequest) (*api.BookingResponse, error)
}

type Request struct {
	api.BookingReassignRequest
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking"`
}

func New(log *slog.Logger, reassigner BookingReassigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.reassign.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "bookingId")
		if id == "" {
			log.Error("bookingId is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "bookingId is required"))
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

		if req.TargetPsychologistID == "" {
			log.Error("target_psychologist_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "target_psychologist_id is required"))
			return
		}

		booking, err := reassigner.ReassignBooking(r.Context(), id, &req.BookingReassignRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), err.Error()))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("booking not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "booking not found"))
			return
		}

		if errors.Is(err, response.ErrInvalidTransition) {
			log.Error("booking is terminal", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.INVALID_TRANSITION), "a terminal booking cannot be reassigned"))
			return
		}

		if errors.Is(err, response.ErrHolidayBlocked) {
			log.Error("target date is blocked by a holiday")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.HOLIDAY_BLOCKED), "the target date is blocked by a holiday"))
			return
		}

		if errors.Is(err, response.ErrReassignTarget) {
			log.Error("reassignment target unavailable", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.REASSIGN_UNAVAILABLE), "the target practitioner has no available slot at that time"))
			return
		}

		var quotaErr *response.QuotaExceededError
		if errors.As(err, &quotaErr) {
			log.Error("target quota exceeded", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(string(response.QUOTA_EXCEEDED), quotaErr.Error()))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("target slot is locked by another request")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "the target slot is locked by another request, retry shortly"))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("reassign conflict", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "the target slot was taken by a concurrent request"))
			return
		}

		if err != nil {
			log.Error("Failed to reassign booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to reassign booking"))
			return
		}

		log.Info("Booking reassigned", slog.String("id", id),
			slog.String("target", req.TargetPsychologistID))

		render.JSON(w, r, Response{Booking: booking})
	}
}
