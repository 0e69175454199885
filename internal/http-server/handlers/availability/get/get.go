package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"salon-service/api"
	"salon-service/pkg/response"
	"salon-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type AvailabilityProvider interface {
	ListAvailability(ctx context.Context, staffID string, from, to time.Time) ([]*api.AvailabilityResponse, error)
}

type Response struct {
	response.Response
	Availability []*api.AvailabilityResponse `json:"availability"`
}

func New(log *slog.Logger, provider AvailabilityProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		staffID := q.Get("staff_id")
		if staffID == "" {
			log.Error("staff_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "staff_id is required"))
			return
		}

		from, err := time.Parse(time.RFC3339, q.Get("from"))
		if err != nil {
			log.Error("invalid from", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "from must be RFC3339"))
			return
		}

		to, err := time.Parse(time.RFC3339, q.Get("to"))
		if err != nil {
			log.Error("invalid to", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "to must be RFC3339"))
			return
		}

		rows, err := provider.ListAvailability(r.Context(), staffID, from, to)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to list availability", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list availability"))
			return
		}

		log.Info("Availability listed", slog.Int("count", len(rows)))

		responseOK(w, r, rows)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, rows []*api.AvailabilityResponse) {
	if rows == nil {
		rows = []*api.AvailabilityResponse{}
	}
	render.JSON(w, r, Response{
		Availability: rows,
	})
}
