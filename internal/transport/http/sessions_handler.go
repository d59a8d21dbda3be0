package http

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"cleanviz/internal/charts"
	"cleanviz/internal/dataset"
	apierrors "cleanviz/internal/errors"
	cvmiddleware "cleanviz/internal/middleware"
	"cleanviz/internal/services"
	api "cleanviz/pkg/contracts/api/v1"
)

// multipartMemory is the part of an upload kept in memory before spilling to
// temporary files. The overall size is capped by the body limit middleware.
const multipartMemory = 32 << 20

// Attachment content types
const (
	contentTypePNG      = "image/png"
	contentTypeZip      = "application/zip"
	contentTypeMarkdown = "text/markdown; charset=utf-8"
	contentTypeCSV      = "text/csv; charset=utf-8"
	contentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Download file names
const (
	bundleFileName = "plots.zip"
	reportFileName = "summary_report.md"
	csvFileName    = "cleaned_data.csv"
	xlsxFileName   = "cleaned_data.xlsx"
)

// SessionsHandler serves the workspace JSON API
type SessionsHandler struct {
	service      WorkspaceServiceInterface
	validator    *cvmiddleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSessionsHandler creates a new sessions handler
func NewSessionsHandler(service WorkspaceServiceInterface, validator *cvmiddleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SessionsHandler {
	return &SessionsHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "sessions_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the session routes
func (h *SessionsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upload)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.SessionCtx)
		r.Get("/", h.GetView)
		r.Delete("/", h.Delete)
		r.Put("/cleaning", h.Clean)
		r.Get("/summary", h.Summary)
		r.Get("/plots/{kind}", h.Plot)
		r.Get("/plots.zip", h.PlotBundle)
		r.Get("/report", h.Report)
		r.Get("/export.csv", h.ExportCSV)
		r.Get("/export.xlsx", h.ExportXLSX)
	})

	return r
}

// SessionCtx rejects ids that cannot name a session
func (h *SessionsHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := uuid.Parse(chi.URLParam(r, "id")); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrSessionNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/sessions
func (h *SessionsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fileName, content, delimiter, err := h.readUpload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "upload received",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("file_name", fileName),
		slog.Int("size", len(content)),
		slog.String("delimiter", string(delimiter)),
	)

	view, err := h.service.Upload(ctx, fileName, content, delimiter)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	w.Header().Set("Location", "/api/sessions/"+view.SessionID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// readUpload extracts and validates the multipart upload. Returned errors are
// ready for the error handler.
func (h *SessionsHandler) readUpload(r *http.Request) (string, []byte, dataset.Delimiter, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, "", err
		}
		return "", nil, "", apierrors.InvalidRequestWithError(err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, "", apierrors.ErrValidation("file", "file is required")
	}
	defer file.Close()

	req := api.UploadRequest{
		FileName:  header.Filename,
		Delimiter: r.FormValue("delimiter"),
	}
	if err := h.validator.Struct(req); err != nil {
		return "", nil, "", err
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return "", nil, "", err
	}
	return req.FileName, content, delimiterHint(req.Delimiter), nil
}

// GetView handles GET /api/sessions/{id}
func (h *SessionsHandler) GetView(w http.ResponseWriter, r *http.Request) {
	opts, err := h.viewOptions(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.View(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

func (h *SessionsHandler) viewOptions(r *http.Request) (services.ViewOptions, error) {
	q := r.URL.Query()
	stats, err := parseBool(q.Get("stats"))
	if err != nil {
		return services.ViewOptions{}, apierrors.ErrValidation("stats", "stats must be a boolean")
	}

	req := api.ViewRequest{Stats: stats, Plot: q.Get("plot"), X: q.Get("x"), Y: q.Get("y")}
	if err := h.validator.Struct(req); err != nil {
		return services.ViewOptions{}, err
	}

	opts := services.ViewOptions{ShowStats: req.Stats}
	if req.Plot != "" {
		opts.Plot = &services.PlotRequest{Kind: charts.Kind(req.Plot), X: req.X, Y: req.Y}
	}
	return opts, nil
}

// Clean handles PUT /api/sessions/{id}/cleaning
func (h *SessionsHandler) Clean(w http.ResponseWriter, r *http.Request) {
	var req api.CleaningRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Clean(r.Context(), chi.URLParam(r, "id"), dataset.CleanOptions{
		DropEmptyRows:    req.DropEmptyRows,
		DropEmptyColumns: req.DropEmptyColumns,
		Renames:          req.Renames,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// Delete handles DELETE /api/sessions/{id}
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/sessions/{id}/summary
func (h *SessionsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
		"count":  len(stats),
	})
}

// Plot handles GET /api/sessions/{id}/plots/{kind}
func (h *SessionsHandler) Plot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	download, err := parseBool(q.Get("download"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("download", "download must be a boolean"))
		return
	}

	req := api.PlotRequest{Kind: chi.URLParam(r, "kind"), X: q.Get("x"), Y: q.Get("y"), Download: download}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	chart, err := h.service.RenderPlot(r.Context(), chi.URLParam(r, "id"), services.PlotRequest{
		Kind: charts.Kind(req.Kind),
		X:    req.X,
		Y:    req.Y,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	writeFile(w, contentTypePNG, chart.FileName, chart.PNG, req.Download)
}

// PlotBundle handles GET /api/sessions/{id}/plots.zip
func (h *SessionsHandler) PlotBundle(w http.ResponseWriter, r *http.Request) {
	archive, err := h.service.PlotBundle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	writeFile(w, contentTypeZip, bundleFileName, archive, true)
}

// Report handles GET /api/sessions/{id}/report
func (h *SessionsHandler) Report(w http.ResponseWriter, r *http.Request) {
	md, err := h.service.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	writeFile(w, contentTypeMarkdown, reportFileName, []byte(md), true)
}

// ExportCSV handles GET /api/sessions/{id}/export.csv
func (h *SessionsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportCSV(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	writeFile(w, contentTypeCSV, csvFileName, data, true)
}

// ExportXLSX handles GET /api/sessions/{id}/export.xlsx
func (h *SessionsHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportXLSX(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	writeFile(w, contentTypeXLSX, xlsxFileName, data, true)
}

// writeFile sends data inline or as a download named fileName
func writeFile(w http.ResponseWriter, contentType, fileName string, data []byte, attachment bool) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": fileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func delimiterHint(s string) dataset.Delimiter {
	if s == "" {
		return dataset.DelimiterAuto
	}
	return dataset.Delimiter(s)
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
