package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"salon-service/api"
	httpactor "salon-service/internal/http-server/actor"
	"salon-service/pkg/response"
	"salon-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type AvailabilityUpdater interface {
	UpdateAvailability(ctx context.Context, id string, req *api.AvailabilityRequest, actor api.Actor) (*api.AvailabilityResponse, error)
}

type Request struct {
	api.AvailabilityRequest
}

type Response struct {
	response.Response
	Availability api.AvailabilityResponse `json:"availability,omitempty"`
}

func New(log *slog.Logger, updater AvailabilityUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.update.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := httpactor.FromRequest(r)
		if !ok {
			log.Error("missing or invalid actor headers")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "X-Actor-ID and X-Actor-Role headers are required"))
			return
		}

		blockID := chi.URLParam(r, "id")
		if blockID == "" {
			log.Error("availability id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "availability id is required"))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		row, err := updater.UpdateAvailability(r.Context(), blockID, &req.AvailabilityRequest, actor)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid availability", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), response.BadRequestReason(err)))
			return
		}

		if errors.Is(err, response.ErrForbidden) {
			log.Error("schedule edit forbidden", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(string(response.FORBIDDEN), "schedule edit is not permitted"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("availability not found", slog.String("availability_id", blockID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "availability not found"))
			return
		}

		if err != nil {
			log.Error("Failed to update availability", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update availability"))
			return
		}

		log.Info("Availability updated", slog.String("availability_id", row.ID))

		responseOK(w, r, row)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, row *api.AvailabilityResponse) {
	render.JSON(w, r, Response{
		Availability: *row,
	})
}
