package create_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salon-service/api"
	"salon-service/internal/http-server/handlers/bookings/create"
	"salon-service/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCreator struct {
	booking *api.BookingResponse
	err     error

	gotReq   *api.BookingRequest
	gotActor api.Actor
}

func (s *stubCreator) CreateBooking(_ context.Context, req *api.BookingRequest, actor api.Actor) (*api.BookingResponse, error) {
	s.gotReq = req
	s.gotActor = actor
	return s.booking, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doRequest(t *testing.T, creator *stubCreator, body string, withActor bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(body))
	if withActor {
		req.Header.Set("X-Actor-ID", "user-1")
		req.Header.Set("X-Actor-Role", "user")
	}

	rr := httptest.NewRecorder()
	create.New(discardLogger(), creator)(rr, req)
	return rr
}

func TestCreateHandler(t *testing.T) {
	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	body := `{"staff_id":"staff-1","service_id":"svc-1","salon_id":"salon-1","date_time":"2025-01-06T10:00:00Z"}`

	cases := []struct {
		name       string
		body       string
		withActor  bool
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       body,
			withActor:  true,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing actor headers",
			body:       body,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(response.BAD_REQUEST),
		},
		{
			name:       "malformed body",
			body:       "{not json",
			withActor:  true,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(response.BAD_REQUEST),
		},
		{
			name:       "scheduling conflict",
			body:       body,
			withActor:  true,
			svcErr:     response.Conflict("overlaps an existing booking from 10:00 to 10:30"),
			wantStatus: http.StatusConflict,
			wantCode:   string(response.CONFLICT),
		},
		{
			name:       "forbidden",
			body:       body,
			withActor:  true,
			svcErr:     response.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantCode:   string(response.FORBIDDEN),
		},
		{
			name:       "locked",
			body:       body,
			withActor:  true,
			svcErr:     response.ErrLocked,
			wantStatus: http.StatusLocked,
			wantCode:   string(response.LOCKED),
		},
		{
			name:       "not found",
			body:       body,
			withActor:  true,
			svcErr:     response.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   string(response.NOT_FOUND),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			creator := &stubCreator{
				booking: &api.BookingResponse{
					ID: "b-1", UserID: "user-1", StaffID: "staff-1",
					DateTime: start, EndTime: start.Add(30 * time.Minute),
					Status: "confirmed",
				},
				err: tc.svcErr,
			}

			rr := doRequest(t, creator, tc.body, tc.withActor)

			assert.Equal(t, tc.wantStatus, rr.Code)

			var resp struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
				Booking api.BookingResponse `json:"booking"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, resp.Error.Code)
				return
			}

			assert.Equal(t, "b-1", resp.Booking.ID)
			require.NotNil(t, creator.gotReq)
			assert.Equal(t, "staff-1", creator.gotReq.StaffID)
			assert.Equal(t, "user-1", creator.gotActor.ID)
		})
	}
}

func TestCreateHandler_BadRequestReasonSurfaced(t *testing.T) {
	creator := &stubCreator{
		err: response.BadRequest("invalid date_time, want RFC3339"),
	}

	rr := doRequest(t, creator, `{"staff_id":"s","service_id":"v","salon_id":"sa","date_time":"tomorrow"}`, true)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid date_time, want RFC3339")
}

func TestCreateHandler_ConflictReasonSurfaced(t *testing.T) {
	creator := &stubCreator{
		err: response.Conflict("staff member is absent during the requested time"),
	}

	rr := doRequest(t, creator, `{"staff_id":"s","service_id":"v","salon_id":"sa","date_time":"2025-01-06T10:00:00Z"}`, true)

	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "staff member is absent")
}
