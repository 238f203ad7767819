package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gucorpling/squeezer/internal/logging"
	"github.com/gucorpling/squeezer/internal/presentation/graph"
	"github.com/gucorpling/squeezer/internal/runtime"
	"github.com/gucorpling/squeezer/internal/validator"
	"github.com/gucorpling/squeezer/pkg/codec"
	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/gucorpling/squeezer/pkg/ports"
	"github.com/gucorpling/squeezer/pkg/session"
)

// maxBody caps request documents.
const maxBody = 32 << 20

// Server exposes the engine over HTTP.
type Server struct {
	Engine   ports.Transformer
	Sessions *session.Manager // optional; enables the /documents routes
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// TransformResponse is the body of a successful transform.
type TransformResponse struct {
	Report   *runtime.Report `json:"report"`
	Document *codec.Document `json:"document"`
}

// ValidateResponse is the body of POST /validate.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Pass  string `json:"pass,omitempty"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}
	if s.Gatherer == nil {
		s.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))

	r.Post("/transform", s.transform)
	r.Post("/validate", s.validate)
	r.Post("/graph", s.graph)

	if s.Sessions != nil {
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.listDocuments)
			r.Get("/{id}", s.getDocument)
			r.Post("/{id}/transform", s.transformStored)
		})
	}
	return r
}

func (s *Server) transform(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decode(w, r)
	if !ok {
		return
	}
	report, err := s.Engine.Transform(r.Context(), doc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TransformResponse{Report: report, Document: codec.FromDomain(doc)})
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	mode := validator.Input
	if r.URL.Query().Get("mode") == "output" {
		mode = validator.Output
	}
	doc, ok := s.decode(w, r)
	if !ok {
		return
	}
	resp := ValidateResponse{Valid: true}
	for _, issue := range validator.Validate(doc.Graph, mode) {
		resp.Valid = false
		resp.Issues = append(resp.Issues, issue.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decode(w, r)
	if !ok {
		return
	}
	opts := &graph.Options{
		HideTokens: r.URL.Query().Get("tokens") == "false",
		Layer:      r.URL.Query().Get("layer"),
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(doc.Graph, opts))
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"documents": ids})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, codec.FromDomain(doc))
}

// transformStored rewrites a stored document in place under its lock.
func (s *Server) transformStored(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var resp TransformResponse
	err := s.Sessions.Update(r.Context(), id, func(ctx context.Context, doc *domain.Document) error {
		report, err := s.Engine.Transform(ctx, doc)
		if err != nil {
			return err
		}
		resp = TransformResponse{Report: report, Document: codec.FromDomain(doc)}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	format := codec.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = codec.FormatYAML
	}
	doc, err := codec.Decode(http.MaxBytesReader(w, r.Body, maxBody), format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid document: %v", err)})
		return nil, false
	}
	return doc, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	var pe *runtime.PassError
	if errors.As(err, &pe) {
		resp.Pass = string(pe.Pass)
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrModelInvariant),
		errors.Is(err, domain.ErrUnresolvedReference),
		errors.Is(err, domain.ErrMalformedDescriptor):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.Logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
