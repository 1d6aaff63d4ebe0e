package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"image-prompt-builder/internal/metrics"
	"image-prompt-builder/internal/promptbuilder"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxBodyBytes = 64 << 10

type Options struct {
	Catalog *promptbuilder.Catalog
	Logger  *slog.Logger
}

type Server struct {
	catalog *promptbuilder.Catalog
	logger  *slog.Logger
	page    *template.Template
}

type apiError struct {
	Error string `json:"error"`
}

func New(opts Options) (*Server, error) {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = promptbuilder.DefaultCatalog()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		catalog: catalog,
		logger:  logger,
		page:    page,
	}, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, s.withLogging)

	r.Get("/", s.handleForm)
	r.Post("/", s.handleSubmit)
	r.Post("/download", s.handleDownload)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Post("/prompt", s.handlePrompt)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.catalog.DefaultSelection(), nil)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.readForm(w, r)
	if !ok {
		return
	}

	// Randomize only re-renders the submitted values.
	if r.PostFormValue("action") != "generate" {
		s.render(w, r, sel, nil)
		return
	}

	rec := promptbuilder.Assemble(sel)
	metrics.ObservePrompt(metrics.SurfaceWeb, sel)
	s.render(w, r, sel, &rec)
}

// handleDownload exports the record rendered on the page when the form
// carries one, so the file matches what the user saw. Otherwise the record is
// assembled from the submitted values.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.readForm(w, r)
	if !ok {
		return
	}

	rec := promptbuilder.Assemble(sel)
	if raw := r.PostForm.Get(recordField); raw != "" {
		parsed, err := promptbuilder.ParseRecord([]byte(raw))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid record: " + err.Error()})
			return
		}
		rec = parsed
	}

	data, err := rec.ExportJSON()
	if err != nil {
		s.logger.Error("export failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "export failed"})
		return
	}
	metrics.Exports.WithLabelValues(metrics.SurfaceWeb).Inc()

	w.Header().Set("content-type", promptbuilder.ExportContentType+"; charset=utf-8")
	w.Header().Set("content-disposition", `attachment; filename="`+promptbuilder.ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse(s.catalog))
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req promptRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json: " + err.Error()})
		return
	}

	sel := req.selection(s.catalog)
	rec := promptbuilder.Assemble(sel)
	metrics.ObservePrompt(metrics.SurfaceAPI, sel)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) readForm(w http.ResponseWriter, r *http.Request) (promptbuilder.Selection, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid form"})
		return promptbuilder.Selection{}, false
	}
	return selectionFromForm(s.catalog, r.PostForm), true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, sel promptbuilder.Selection, rec *promptbuilder.Record) {
	view, err := newPageView(s.catalog, sel, rec)
	if err != nil {
		s.logger.Error("build page failed", "err", err, "request_id", middleware.GetReqID(r.Context()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("content-type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, view); err != nil {
		s.logger.Error("render failed", "err", err, "request_id", middleware.GetReqID(r.Context()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
