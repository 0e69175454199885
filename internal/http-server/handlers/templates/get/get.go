package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"salon-service/api"
	"salon-service/pkg/response"
	"salon-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type TemplateProvider interface {
	GetTemplate(ctx context.Context, id string) (*api.TemplateResponse, error)
}

type Response struct {
	response.Response
	Template api.TemplateResponse `json:"template,omitempty"`
}

func New(log *slog.Logger, provider TemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		templateID := chi.URLParam(r, "id")
		if templateID == "" {
			log.Error("template id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "template id is required"))
			return
		}

		template, err := provider.GetTemplate(r.Context(), templateID)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("template not found", slog.String("template_id", templateID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "template not found"))
			return
		}

		if err != nil {
			log.Error("Failed to get template", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get template"))
			return
		}

		responseOK(w, r, template)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, template *api.TemplateResponse) {
	render.JSON(w, r, Response{
		Template: *template,
	})
}
