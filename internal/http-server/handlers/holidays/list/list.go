package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"wellness-scheduler/api"
	"wellness-scheduler/pkg/response"
	"wellness-scheduler/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type HolidayLister interface {
	ListHolidays(ctx context.Context, year *int) ([]*api.HolidayResponse, error)
}

type Response struct {
	response.Response
	Holidays []*api.HolidayResponse `json:"holidays"`
}

func New(log *slog.Logger, lister HolidayLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.holidays.list.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var year *int
		if v := r.URL.Query().Get("year"); v != "" {
			y, err := strconv.Atoi(v)
			if err != nil {
				log.Error("invalid year", sl.Err(err))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid year"))
				return
			}
			year = &y
		}

		holidays, err := lister.ListHolidays(r.Context(), year)
		if err != nil {
			log.Error("Failed to list holidays", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list holidays"))
			return
		}

		render.JSON(w, r, Response{Holidays: holidays})
	}
}
