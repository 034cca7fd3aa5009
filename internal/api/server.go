// Package api exposes the annotation pipeline over HTTP.
//
// The server is a thin JSON layer over pipeline.Runner and history.Store:
// request decoding, error-code to status mapping, and nothing else. Partial
// failures are not errors; the response carries sequences and failures side
// by side.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tmonheim/chainview/pkg/alignment"
	"github.com/tmonheim/chainview/pkg/annot"
	"github.com/tmonheim/chainview/pkg/errors"
	"github.com/tmonheim/chainview/pkg/history"
	"github.com/tmonheim/chainview/pkg/pipeline"
)

// Server handles HTTP requests for annotation, alignment, and run history.
type Server struct {
	runner *pipeline.Runner
	store  history.Store
	logger *log.Logger
}

// NewServer creates a server. store may be nil, in which case the history
// endpoints respond 404 and annotate requests cannot be saved.
func NewServer(runner *pipeline.Runner, store history.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: store, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/annotate", s.handleAnnotate)
	r.Post("/api/align", s.handleAlign)
	r.Get("/api/history", s.handleHistoryList)
	r.Get("/api/history/{id}", s.handleHistoryGet)
	r.Delete("/api/history", s.handleHistoryClear)

	return r
}

type annotateRequest struct {
	// Payload is the raw annotation service response to normalize.
	Payload json.RawMessage `json:"payload"`
	// Name labels the run when Save is set.
	Name string `json:"name,omitempty"`
	// Save persists the run to history.
	Save    bool             `json:"save,omitempty"`
	Options pipeline.Options `json:"options"`
}

type annotateResponse struct {
	Sequences []annot.SequenceModel `json:"sequences"`
	Failures  []annot.ItemFailure   `json:"failures,omitempty"`
	ModelHash string                `json:"model_hash"`
	Artifacts map[string]string     `json:"artifacts,omitempty"`
	RunID     string                `json:"run_id,omitempty"`
	Cached    bool                  `json:"cached"`
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req annotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode request"))
		return
	}
	if len(req.Payload) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeMalformedInput, "payload is required"))
		return
	}

	result, err := s.runner.Execute(r.Context(), req.Payload, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := annotateResponse{
		Sequences: result.Sequences,
		Failures:  result.Failures,
		ModelHash: result.ModelHash,
		Artifacts: stringArtifacts(result.Artifacts),
		Cached:    result.CacheInfo.AnnotationHit,
	}

	if req.Save && s.store != nil {
		run := history.NewRun(req.Name, "", "", history.Result{
			Sequences: result.Sequences,
			Failures:  result.Failures,
		})
		if err := s.store.Save(r.Context(), run); err != nil {
			s.logger.Error("save run", "err", err)
		} else {
			resp.RunID = run.ID
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type alignRequest struct {
	pipeline.AlignInput
	Options pipeline.Options `json:"options"`
}

type alignResponse struct {
	Lines     []alignment.Line  `json:"lines"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	var req alignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode request"))
		return
	}

	result, err := s.runner.ExecuteAlign(r.Context(), req.AlignInput, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, alignResponse{
		Lines:     result.Lines,
		Artifacts: stringArtifacts(result.Artifacts),
	})
}

// runListItem is one history entry without its full result payload.
type runListItem struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	NumberingScheme string          `json:"numbering_scheme,omitempty"`
	Timestamp       string          `json:"timestamp"`
	Summary         history.Summary `json:"summary"`
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "history is not enabled"))
		return
	}
	runs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	items := make([]runListItem, 0, len(runs))
	for _, run := range runs {
		items = append(items, runListItem{
			ID:              run.ID,
			Name:            run.Name,
			NumberingScheme: run.NumberingScheme,
			Timestamp:       run.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Summary:         run.Summary,
		})
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "history is not enabled"))
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.store.Get(r.Context(), id)
	if err == history.ErrNotFound {
		s.writeError(w, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id))
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "history is not enabled"))
		return
	}
	if err := s.store.Clear(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	s.writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(code),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeMalformedInput,
		errors.ErrCodeInvalidRange,
		errors.ErrCodeLengthMismatch,
		errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidScheme:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeRunNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func stringArtifacts(artifacts map[string][]byte) map[string]string {
	if len(artifacts) == 0 {
		return nil
	}
	out := make(map[string]string, len(artifacts))
	for format, data := range artifacts {
		out[format] = string(data)
	}
	return out
}
