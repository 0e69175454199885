package cancel

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

type BookingCanceller interface {
	CancelBooking(ctx context.Context, bookingID string, actor api.Actor) (*api.BookingResponse, error)
	DeleteBooking(ctx context.Context, bookingID string, actor api.Actor) error
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

// New cancels a booking. With ?purge=true the record is removed entirely,
// which only administrators may do.
func New(log *slog.Logger, canceller BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.cancel.New"

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

		bookingID := chi.URLParam(r, "id")
		if bookingID == "" {
			log.Error("booking id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "booking id is required"))
			return
		}

		var (
			booking *api.BookingResponse
			err     error
		)

		if r.URL.Query().Get("purge") == "true" {
			err = canceller.DeleteBooking(r.Context(), bookingID, actor)
		} else {
			booking, err = canceller.CancelBooking(r.Context(), bookingID, actor)
		}

		if errors.Is(err, response.ErrForbidden) {
			log.Error("cancellation forbidden", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(string(response.FORBIDDEN), "cancellation is not permitted"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("booking not found", slog.String("booking_id", bookingID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "booking not found"))
			return
		}

		if err != nil {
			log.Error("Failed to cancel booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to cancel booking"))
			return
		}

		log.Info("Booking cancelled", slog.String("booking_id", bookingID))

		render.JSON(w, r, Response{Booking: booking})
	}
}
