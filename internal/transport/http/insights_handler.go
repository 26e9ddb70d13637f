package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "mktintel/internal/errors"
)

// InsightsHandler serves generated insights and the analyst chat endpoint.
type InsightsHandler struct {
	service      InsightServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *validator.Validate
}

// ChatRequest is the POST /api/insights/chat body.
type ChatRequest struct {
	Question string `json:"question" validate:"required,min=3,max=2000"`
}

// Bind implements render.Binder.
func (c *ChatRequest) Bind(r *http.Request) error { return nil }

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(service InsightServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *InsightsHandler {
	return &InsightsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "insights_handler")),
		errorHandler: errorHandler,
		validator:    validator.New(),
	}
}

// Routes returns the insights routes.
func (h *InsightsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetInsights)
	r.Post("/chat", h.Chat)

	return r
}

// GetInsights handles GET /api/insights
func (h *InsightsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	bundle, err := h.service.Bundle(r.Context(), q)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to generate insights",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   bundle,
	})
}

// Chat handles POST /api/insights/chat
func (h *InsightsHandler) Chat(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var req ChatRequest
	if err := render.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "request body must be JSON with a question field"))
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("question", "question must be between 3 and 2000 characters"))
		return
	}

	answer, err := h.service.Chat(r.Context(), req.Question, q)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "chat request failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   answer,
	})
}
