package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qseq/internal/domain"
	"github.com/kailas-cloud/qseq/internal/domain/search/predicate"
	"github.com/kailas-cloud/qseq/internal/domain/search/request"
	"github.com/kailas-cloud/qseq/internal/domain/search/symmetry"
	logpkg "github.com/kailas-cloud/qseq/internal/logger"
	healthuc "github.com/kailas-cloud/qseq/internal/usecase/health"
	searchuc "github.com/kailas-cloud/qseq/internal/usecase/search"
)

const ndjsonContentType = "application/x-ndjson"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Limits bounds the work a single HTTP request may start.
type Limits struct {
	// DefaultWorkers applies when the request leaves workers unset (0 = GOMAXPROCS).
	DefaultWorkers int
	// MaxLeaves caps the leaf budget of every request (0 = no cap).
	MaxLeaves uint64
	// Timeout is the per-request search deadline (0 = none).
	Timeout time.Duration
}

// Server serves the qseq HTTP API.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, limits Limits, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		limits: limits,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sizeLimitHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrInvalidSize, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUnknownPredicate, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUnknownSymmetry, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUnsupportedSymmetry, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidBudget, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidSymbol, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrEmptySequence, http.StatusBadRequest, CodeValidationFailed),
	}
	return s
}

// Routes mounts the API handlers on r.
func (s *Server) Routes(r gochi.Router) {
	r.Post("/searches", s.Search)
	r.Get("/searches", s.ListCached)
	r.Delete("/searches/{predicate}/{symmetry}/{size}", s.ForgetCached)
	r.Post("/sequences/check", s.CheckSequence)
	r.Post("/sequences/shrink", s.ShrinkSequence)
	r.Get("/alphabet", s.Alphabet)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /searches. With ?stream=true or an NDJSON Accept
// header, solutions are written one per line as they are found and the last
// line carries the summary.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := s.requestFromBody(body)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	ctx := logpkg.ContextWithLogger(r.Context(), s.log(r.Context()).With(zap.String("search", req.Key())))
	if s.limits.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.limits.Timeout)
		defer cancel()
	}

	if wantsStream(r) {
		s.streamSearch(ctx, w, req)
		return
	}

	res, err := s.search.Search(ctx, req, nil)
	if err != nil {
		s.handleDomainError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, responseFromResult(&res))
}

func (s *Server) streamSearch(ctx context.Context, w http.ResponseWriter, req request.Request) {
	sw := &streamWriter{w: w, enc: json.NewEncoder(w)}
	flusher, _ := w.(http.Flusher)

	res, err := s.search.Search(ctx, req, func(solution string) {
		sw.line(StreamLine{Solution: solution})
		if flusher != nil {
			flusher.Flush()
		}
	})
	if err != nil {
		if !sw.started {
			s.handleDomainError(ctx, w, err)
			return
		}
		s.log(ctx).Error("Search failed mid-stream", zap.Error(err))
		return
	}

	summary := summaryFromResult(&res)
	sw.line(StreamLine{Result: &summary})
}

// ListCached handles GET /searches.
func (s *Server) ListCached(w http.ResponseWriter, r *http.Request) {
	list, err := s.search.Cached(r.Context())
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	items := make([]CachedRun, len(list))
	for i, sum := range list {
		items[i] = cachedRunFromSummary(sum)
	}
	writeJSON(w, http.StatusOK, CachedRunList{Items: items})
}

// ForgetCached handles DELETE /searches/{predicate}/{symmetry}/{size}.
func (s *Server) ForgetCached(w http.ResponseWriter, r *http.Request) {
	size, err := strconv.Atoi(gochi.URLParam(r, "size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "size must be an integer")
		return
	}

	req, err := request.New(size,
		predicate.Predicate(gochi.URLParam(r, "predicate")),
		symmetry.Symmetry(gochi.URLParam(r, "symmetry")),
		0, 0, 1,
	)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	if err := s.search.Forget(r.Context(), req); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckSequence handles POST /sequences/check.
func (s *Server) CheckSequence(w http.ResponseWriter, r *http.Request) {
	var body SequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	a, err := s.search.Check(body.Sequence)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkFromAnalysis(a))
}

// ShrinkSequence handles POST /sequences/shrink.
func (s *Server) ShrinkSequence(w http.ResponseWriter, r *http.Request) {
	var body SequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sub, found, err := s.search.Shrink(body.Sequence)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, ShrinkResponse{Sequence: body.Sequence, Found: found, SubOPQS: sub})
}

// Alphabet handles GET /alphabet.
func (s *Server) Alphabet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, alphabetEntries())
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) requestFromBody(body SearchRequest) (request.Request, error) {
	if body.Size == nil {
		return request.Request{}, fmt.Errorf("%w: size is required", domain.ErrInvalidSize)
	}
	if body.MaxSolutions < 0 {
		return request.Request{}, fmt.Errorf("%w: max_solutions must be >= 0", domain.ErrInvalidBudget)
	}

	maxLeaves := s.limits.MaxLeaves
	if body.MaxLeaves != nil && *body.MaxLeaves > 0 && (maxLeaves == 0 || *body.MaxLeaves < maxLeaves) {
		maxLeaves = *body.MaxLeaves
	}
	workers := body.Workers
	if workers <= 0 {
		workers = s.limits.DefaultWorkers
	}

	req, err := request.New(*body.Size,
		predicate.Predicate(body.Predicate), symmetry.Symmetry(body.Symmetry),
		body.MaxSolutions, maxLeaves, workers,
	)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return req, nil
}

func wantsStream(r *http.Request) bool {
	if v, err := strconv.ParseBool(r.URL.Query().Get("stream")); err == nil {
		return v
	}
	return r.Header.Get("Accept") == ndjsonContentType
}

// streamWriter writes NDJSON lines, sending the header on the first line.
type streamWriter struct {
	w       http.ResponseWriter
	enc     *json.Encoder
	started bool
}

func (sw *streamWriter) line(v StreamLine) {
	if !sw.started {
		sw.w.Header().Set("Content-Type", ndjsonContentType)
		sw.w.WriteHeader(http.StatusOK)
		sw.started = true
	}
	_ = sw.enc.Encode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// clientSentinels are errors caused by request input; their full message is
// safe to return because it only echoes what the client sent.
var clientSentinels = []error{
	domain.ErrNotFound,
	domain.ErrInvalidSize,
	domain.ErrSizeTooLarge,
	domain.ErrUnknownPredicate,
	domain.ErrUnknownSymmetry,
	domain.ErrUnsupportedSymmetry,
	domain.ErrInvalidBudget,
	domain.ErrInvalidSymbol,
	domain.ErrEmptySequence,
}

// safeDomainMessage returns a client message without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range clientSentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// sizeLimitHandler handles ErrSizeTooLarge and reports the configured maximum.
func sizeLimitHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrSizeTooLarge) {
		return false
	}
	var sle *domain.SizeLimitError
	if errors.As(err, &sle) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":     CodeSizeTooLarge,
			"message":  msg,
			"max_size": sle.Max,
		})
		return true
	}
	writeError(w, http.StatusUnprocessableEntity, CodeSizeTooLarge, msg)
	return true
}

func (s *Server) log(ctx context.Context) *zap.Logger {
	return logpkg.FromContextOr(ctx, s.logger)
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := s.log(ctx)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
