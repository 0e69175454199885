package delete

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

type TemplateDeleter interface {
	DeleteTemplate(ctx context.Context, id string, actor api.Actor) error
}

func New(log *slog.Logger, deleter TemplateDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.delete.New"

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

		err := deleter.DeleteTemplate(r.Context(), templateID, actor)

		if errors.Is(err, response.ErrForbidden) {
			log.Error("template deletion forbidden", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(string(response.FORBIDDEN), "template deletion is not permitted"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("template not found", slog.String("template_id", templateID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "template not found"))
			return
		}

		if err != nil {
			log.Error("Failed to delete template", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to delete template"))
			return
		}

		log.Info("Template deleted", slog.String("template_id", templateID))

		render.JSON(w, r, response.Response{})
	}
}
