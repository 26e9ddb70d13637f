package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "mktintel/internal/errors"
	"mktintel/internal/exporter"
)

// DashboardHandler serves the combined, marketing and summary views plus
// file exports, with RFC 7807 error responses.
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/combined", h.GetCombined)
	r.Get("/marketing", h.GetMarketing)
	r.Get("/summary", h.GetSummary)
	r.Get("/export", h.Export)
	r.Post("/refresh", h.Refresh)

	return r
}

// GetCombined handles GET /api/dashboard/combined
func (h *DashboardHandler) GetCombined(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Combined(r.Context(), q)
	if err != nil {
		h.logError(r, "failed to build combined view", err)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"data":    result.Rows,
		"count":   len(result.Rows),
		"quality": result.Quality,
	})
}

// GetMarketing handles GET /api/dashboard/marketing
func (h *DashboardHandler) GetMarketing(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.Marketing(r.Context(), q)
	if err != nil {
		h.logError(r, "failed to build marketing view", err)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetSummary handles GET /api/dashboard/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	stats, err := h.service.Summary(r.Context(), q)
	if err != nil {
		h.logError(r, "failed to build summary", err)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
	})
}

// Export handles GET /api/dashboard/export. CSV exports one view selected
// by the "view" parameter; xlsx always carries the full workbook.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	view := r.URL.Query().Get("view")
	if view == "" {
		view = "combined"
	}
	stamp := time.Now().Format("2006-01-02")

	switch format {
	case "csv":
		switch view {
		case "combined":
			result, err := h.service.Combined(r.Context(), q)
			if err != nil {
				h.errorHandler.HandleError(w, r, err)
				return
			}
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="combined_%s.csv"`, stamp))
			if err := exporter.WriteCombinedCSV(w, result.Rows); err != nil {
				h.logError(r, "combined csv export failed", err)
			}
		case "marketing":
			rows, err := h.service.Marketing(r.Context(), q)
			if err != nil {
				h.errorHandler.HandleError(w, r, err)
				return
			}
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="marketing_%s.csv"`, stamp))
			if err := exporter.WriteMarketingCSV(w, rows); err != nil {
				h.logError(r, "marketing csv export failed", err)
			}
		default:
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("view", "allowed views: combined, marketing"))
		}
	case "xlsx":
		combined, err := h.service.Combined(r.Context(), q)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		marketing, err := h.service.Marketing(r.Context(), q)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		stats, err := h.service.Summary(r.Context(), q)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		book, err := exporter.Workbook(combined.Rows, marketing, stats)
		if err != nil {
			h.logError(r, "workbook build failed", err)
			h.errorHandler.HandleError(w, r, err)
			return
		}
		defer book.Close()

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="dashboard_%s.xlsx"`, stamp))
		if err := book.Write(w); err != nil {
			h.logError(r, "workbook write failed", err)
		}
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "allowed formats: csv, xlsx"))
	}
}

// Refresh handles POST /api/dashboard/refresh, dropping the cached result.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.service.Invalidate()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
	})
}

func (h *DashboardHandler) logError(r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
	)
}
