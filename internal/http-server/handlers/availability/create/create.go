package create

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
	"github.com/go-chi/render"
)

type AvailabilityCreator interface {
	CreateAvailability(ctx context.Context, req *api.AvailabilityRequest, actor api.Actor) (*api.AvailabilityResponse, error)
}

type Request struct {
	api.AvailabilityRequest
}

type Response struct {
	response.Response
	Availability api.AvailabilityResponse `json:"availability,omitempty"`
}

func New(log *slog.Logger, creator AvailabilityCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.create.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		row, err := creator.CreateAvailability(r.Context(), &req.AvailabilityRequest, actor)

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
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to create availability", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create availability"))
			return
		}

		log.Info("Availability created", slog.String("availability_id", row.ID))

		w.WriteHeader(http.StatusCreated)
		responseOK(w, r, row)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, row *api.AvailabilityResponse) {
	render.JSON(w, r, Response{
		Availability: *row,
	})
}
