package list

import (
	"context"
	"log/slog"
	"net/http"

	"wellness-scheduler/api"
	"wellness-scheduler/internal/models"
	"wellness-scheduler/internal/service"
	"wellness-scheduler/pkg/response"
	"wellness-scheduler/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BookingLister interface {
	ListBookings(ctx context.Context, filters *service.BookingFilters) ([]*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Bookings []*api.BookingResponse `json:"bookings"`
}

// NewForPsychologist lists the bookings assigned to one practitioner.
func NewForPsychologist(log *slog.Logger, lister BookingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.list.NewForPsychologist"

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

		filters := &service.BookingFilters{PsychologistID: &id}
		applyCommonFilters(r, filters)

		serve(w, r, log, lister, filters)
	}
}

// NewForClient lists the bookings made by one client.
func NewForClient(log *slog.Logger, lister BookingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.list.NewForClient"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := r.URL.Query().Get("client_id")
		if id == "" {
			log.Error("client_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "client_id is required"))
			return
		}

		filters := &service.BookingFilters{ClientID: &id}
		applyCommonFilters(r, filters)

		serve(w, r, log, lister, filters)
	}
}

func applyCommonFilters(r *http.Request, filters *service.BookingFilters) {
	if v := r.URL.Query().Get("status"); v != "" {
		if status, ok := models.ParseBookingStatus(v); ok {
			filters.Status = &status
		}
	}
}

func serve(w http.ResponseWriter, r *http.Request, log *slog.Logger, lister BookingLister, filters *service.BookingFilters) {
	bookings, err := lister.ListBookings(r.Context(), filters)
	if err != nil {
		log.Error("Failed to list bookings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list bookings"))
		return
	}

	render.JSON(w, r, Response{Bookings: bookings})
}
