package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"salon-service/api"
	"salon-service/pkg/response"
	"salon-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type TimeslotProvider interface {
	GetTimeslots(ctx context.Context, staffID, serviceID, salonID, date string, stepMinutes int) (*api.TimeslotsResponse, error)
}

type Response struct {
	response.Response
	api.TimeslotsResponse
}

func New(log *slog.Logger, provider TimeslotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.timeslots.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		staffID := q.Get("staff_id")
		serviceID := q.Get("service_id")
		salonID := q.Get("salon_id")
		date := q.Get("date")

		if staffID == "" || serviceID == "" || salonID == "" || date == "" {
			log.Error("missing required query parameters")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "staff_id, service_id, salon_id and date are required"))
			return
		}

		step := 0
		if raw := q.Get("step"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				log.Error("invalid step", sl.Err(err))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "step must be an integer"))
				return
			}
			step = parsed
		}

		slots, err := provider.GetTimeslots(r.Context(), staffID, serviceID, salonID, date, step)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid timeslot query", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), response.BadRequestReason(err)))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to compute timeslots", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to compute timeslots"))
			return
		}

		log.Info("Timeslots computed", slog.Int("count", len(slots.Slots)))

		responseOK(w, r, slots)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, slots *api.TimeslotsResponse) {
	render.JSON(w, r, Response{
		TimeslotsResponse: *slots,
	})
}
