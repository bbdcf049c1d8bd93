package populate

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

type SlotGenerator interface {
	PopulateDays(ctx context.Context, req *api.PopulateRequest) (*api.GenerationSummary, error)
}

type Request struct {
	api.PopulateRequest
}

type Response struct {
	response.Response
	Summary api.GenerationSummary `json:"summary"`
}

func New(log *slog.Logger, generator SlotGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.populate.New"

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

		if len(req.PsychologistIDs) == 0 {
			log.Error("psychologist_ids is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "psychologist_ids is required"))
			return
		}

		summary, err := generator.PopulateDays(r.Context(), &req.PopulateRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), err.Error()))
			return
		}

		if err != nil {
			log.Error("Failed to generate slots", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to generate slots"))
			return
		}

		log.Info("Slots generated",
			slog.Int("created", summary.Created),
			slog.Int("skipped_existing", summary.SkippedExisting),
			slog.Int("blocked_days", summary.BlockedDays),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Summary: *summary})
	}
}
