package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"cleanviz/internal/charts"
	"cleanviz/internal/config"
	"cleanviz/internal/dataset"
	apierrors "cleanviz/internal/errors"
	"cleanviz/internal/services"
	"cleanviz/pkg/contracts"
	"cleanviz/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// HTMLHandler serves the server-rendered UI. It drives the same workspace
// service as the JSON API.
type HTMLHandler struct {
	service      WorkspaceServiceInterface
	templates    *template.Template
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

type indexPage struct {
	Title   string
	Version string
	Error   string
}

type workspacePage struct {
	Title   string
	Version string
	Error   string
	View    *domain.View
	Stats   bool
	Plot    string
	X       string
	Y       string
	Renames []renameRow
}

// renameRow is one line of the rename form. From is the column's name in the
// upload, To its current name when it has been renamed.
type renameRow struct {
	From string
	To   string
}

// NewHTMLHandler parses the embedded templates
func NewHTMLHandler(service WorkspaceServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*HTMLHandler, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"downloadURL": downloadURL,
		"fmtFloat":    fmtFloat,
		"selected":    func(a, b string) bool { return a == b },
		"add1":        func(i int) int { return i + 1 },
		"percent":     func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &HTMLHandler{
		service:      service,
		templates:    tmpl,
		logger:       logger.With(slog.String("component", "html_handler")),
		errorHandler: errorHandler,
	}, nil
}

// RegisterRoutes adds the UI routes to r. They live at the root, next to
// /api and /metrics.
func (h *HTMLHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Post("/upload", h.Upload)
	r.Get("/s/{id}", h.Workspace)
	r.Post("/s/{id}/clean", h.Clean)
}

// Index handles GET /
func (h *HTMLHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index.html", indexPage{Title: config.AppName, Version: contracts.Version})
}

// Upload handles POST /upload and redirects to the new workspace
func (h *HTMLHandler) Upload(w http.ResponseWriter, r *http.Request) {
	page := indexPage{Title: config.AppName, Version: contracts.Version}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.renderError(w, r, "index.html", &page, &page.Error, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderError(w, r, "index.html", &page, &page.Error, apierrors.ErrValidation("file", "Choose a CSV, TSV or XLSX file to upload"))
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		h.renderError(w, r, "index.html", &page, &page.Error, err)
		return
	}

	view, err := h.service.Upload(r.Context(), header.Filename, buf.Bytes(), delimiterHint(r.FormValue("delimiter")))
	if err != nil {
		h.renderError(w, r, "index.html", &page, &page.Error, mapServiceError(err))
		return
	}

	http.Redirect(w, r, "/s/"+view.SessionID, http.StatusSeeOther)
}

// Workspace handles GET /s/{id}
func (h *HTMLHandler) Workspace(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := workspacePage{
		Title:   config.AppName,
		Version: contracts.Version,
		Stats:   q.Get("stats") != "",
		Plot:    q.Get("plot"),
		X:       q.Get("x"),
		Y:       q.Get("y"),
	}

	opts := services.ViewOptions{ShowStats: page.Stats}
	if page.Plot != "" {
		kind, err := charts.ParseKind(page.Plot)
		if err != nil {
			h.renderError(w, r, "workspace.html", &page, &page.Error, mapServiceError(err))
			return
		}
		page.Plot = string(kind)
		opts.Plot = &services.PlotRequest{Kind: kind, X: page.X, Y: page.Y}
	}

	view, err := h.service.View(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		h.renderError(w, r, "workspace.html", &page, &page.Error, mapServiceError(err))
		return
	}
	page.View = view
	page.Renames = renameRows(view)
	h.render(w, r, http.StatusOK, "workspace.html", page)
}

// Clean handles POST /s/{id}/clean. Renames arrive as parallel rename_from
// and rename_to fields.
func (h *HTMLHandler) Clean(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	page := workspacePage{Title: config.AppName, Version: contracts.Version}

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, "workspace.html", &page, &page.Error, apierrors.InvalidRequestWithError(err))
		return
	}

	opts := dataset.CleanOptions{
		DropEmptyRows:    r.PostForm.Get("drop_empty_rows") != "",
		DropEmptyColumns: r.PostForm.Get("drop_empty_columns") != "",
		Renames:          map[string]string{},
	}
	from, to := r.PostForm["rename_from"], r.PostForm["rename_to"]
	for i := range min(len(from), len(to)) {
		if target := strings.TrimSpace(to[i]); target != "" && target != from[i] {
			opts.Renames[from[i]] = target
		}
	}

	if _, err := h.service.Clean(r.Context(), id, opts); err != nil {
		h.renderError(w, r, "workspace.html", &page, &page.Error, mapServiceError(err))
		return
	}

	http.Redirect(w, r, "/s/"+url.PathEscape(id), http.StatusSeeOther)
}

// renderError renders page with an error banner. The status and message come
// from the same problem mapping as the JSON API.
func (h *HTMLHandler) renderError(w http.ResponseWriter, r *http.Request, name string, page interface{}, msg *string, err error) {
	problem := h.errorHandler.ErrorToProblem(err, r)
	*msg = problem.Detail
	if *msg == "" {
		*msg = problem.Title
	}
	switch details := problem.Extensions["details"].(type) {
	case string:
		if details != "" {
			*msg += ": " + details
		}
	case apierrors.ValidationError:
		*msg += ": " + details.Message
	case apierrors.ValidationErrors:
		for _, e := range details.Errors {
			*msg += "; " + e.Message
		}
	}

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "page request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", problem.Status),
		slog.String("error", err.Error()))

	h.render(w, r, problem.Status, name, page)
}

func (h *HTMLHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("failed to render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renameRows(view *domain.View) []renameRow {
	original := make(map[string]string, len(view.Cleaning.Renames))
	for from, to := range view.Cleaning.Renames {
		original[to] = from
	}
	rows := make([]renameRow, 0, len(view.Columns))
	for _, c := range view.Columns {
		if from, ok := original[c.Name]; ok {
			rows = append(rows, renameRow{From: from, To: c.Name})
			continue
		}
		rows = append(rows, renameRow{From: c.Name})
	}
	return rows
}

// downloadURL turns a plot image URL into its attachment URL
func downloadURL(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return imageURL
	}
	q := u.Query()
	q.Set("download", "true")
	u.RawQuery = q.Encode()
	return u.String()
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", *v)
}
