package apply

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

type TemplateApplier interface {
	ApplyTemplate(ctx context.Context, templateID string, req *api.TemplateApplyRequest, actor api.Actor) (*api.TemplateApplyResponse, error)
}

type Request struct {
	api.TemplateApplyRequest
}

type Response struct {
	response.Response
	api.TemplateApplyResponse
}

func New(log *slog.Logger, applier TemplateApplier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.apply.New"

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

		templateID := chi.URLParam(r, "id")
		if templateID == "" {
			log.Error("template id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "template id is required"))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded",
			slog.String("template_id", templateID),
			slog.String("week_start", req.WeekStart),
			slog.Int("weeks", req.Weeks),
		)

		result, err := applier.ApplyTemplate(r.Context(), templateID, &req.TemplateApplyRequest, actor)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid apply request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), response.BadRequestReason(err)))
			return
		}

		if errors.Is(err, response.ErrForbidden) {
			log.Error("template apply forbidden", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(string(response.FORBIDDEN), "template apply is not permitted"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("template not found", slog.String("template_id", templateID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "template not found"))
			return
		}

		if err != nil {
			log.Error("Failed to apply template", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to apply template"))
			return
		}

		log.Info("Template applied",
			slog.Int("created", result.Created),
			slog.Int("replaced", result.Replaced),
		)

		responseOK(w, r, result)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, result *api.TemplateApplyResponse) {
	render.JSON(w, r, Response{
		TemplateApplyResponse: *result,
	})
}
