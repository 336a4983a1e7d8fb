package chi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/qseq/internal/domain"
	"github.com/kailas-cloud/qseq/internal/domain/search/request"
	"github.com/kailas-cloud/qseq/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/qseq/internal/logger"
	healthuc "github.com/kailas-cloud/qseq/internal/usecase/health"
	searchuc "github.com/kailas-cloud/qseq/internal/usecase/search"
)

// memCache is an in-memory searchuc.ResultCache.
type memCache struct {
	m map[string]result.Result
}

func (c *memCache) Get(_ context.Context, req request.Request) (result.Result, error) {
	res, ok := c.m[req.Key()]
	if !ok {
		return result.Result{}, domain.ErrNotFound
	}
	return res.WithCached(), nil
}

func (c *memCache) Put(_ context.Context, req request.Request, res result.Result) error {
	c.m[req.Key()] = res
	return nil
}

func (c *memCache) List(_ context.Context) ([]result.Summary, error) {
	out := make([]result.Summary, 0, len(c.m))
	for _, res := range c.m {
		out = append(out, res.Summarize(time.Unix(0, 0)))
	}
	return out, nil
}

func (c *memCache) Delete(_ context.Context, req request.Request) error {
	delete(c.m, req.Key())
	return nil
}

func newTestRouter(t *testing.T, cache searchuc.ResultCache, limits Limits, apiKeys ...string) http.Handler {
	t.Helper()
	svc := searchuc.New(searchuc.NewEngine(), cache, zap.NewNop()).WithMaxSize(12)
	server := NewServer(svc, healthuc.New(nil, svc), limits, zap.NewNop())
	return NewRouter(server, apiKeys, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

// --- POST /searches ---

func TestSearch_Buffered(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	rr := do(t, h, http.MethodPost, "/searches", `{"size":4}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	resp := decode[SearchResponse](t, rr)

	want := []string{"+ii+", "+II+", "+jj+", "+JJ+", "+kk+", "+KK+"}
	if !slices.Equal(resp.Solutions, want) {
		t.Errorf("solutions = %v, want %v", resp.Solutions, want)
	}
	if resp.Count != 6 || resp.Leaves != 16 || resp.Truncated || resp.Cached {
		t.Errorf("unexpected summary %+v", resp.SearchSummary)
	}
	if resp.Predicate != "odd_periodic" || resp.Symmetry != "palindromic" {
		t.Errorf("defaults not applied: %+v", resp.SearchSummary)
	}
}

func TestSearch_EmptySolutionsIsArray(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	rr := do(t, h, http.MethodPost, "/searches", `{"size":4,"predicate":"periodic"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"solutions":[]`) {
		t.Errorf("expected empty solutions array, got %s", rr.Body)
	}
}

func TestSearch_Stream(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	rr := do(t, h, http.MethodPost, "/searches?stream=true", `{"size":5,"workers":3}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	if ct := rr.Header().Get("Content-Type"); ct != ndjsonContentType {
		t.Errorf("Content-Type = %q", ct)
	}

	var solutions []string
	var summary *SearchSummary
	sc := bufio.NewScanner(bytes.NewReader(rr.Body.Bytes()))
	for sc.Scan() {
		var line StreamLine
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		if line.Result != nil {
			summary = line.Result
			continue
		}
		solutions = append(solutions, line.Solution)
	}

	if len(solutions) != 12 {
		t.Errorf("streamed %d solutions, want 12", len(solutions))
	}
	if summary == nil || summary.Count != 12 || summary.Leaves != 256 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestSearch_StreamViaAccept(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	req := httptest.NewRequest(http.MethodPost, "/searches", strings.NewReader(`{"size":1}`))
	req.Header.Set("Accept", ndjsonContentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := strings.TrimSpace(rr.Body.String()); !strings.HasPrefix(got, `{"solution":"+"}`) {
		t.Errorf("unexpected stream %q", got)
	}
}

func TestSearch_StreamValidationErrorIsJSON(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	rr := do(t, h, http.MethodPost, "/searches?stream=1", `{"size":13}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestSearch_ValidationErrors(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	tests := []struct {
		name   string
		body   string
		status int
		code   ErrorCode
	}{
		{"malformed json", `{"size":`, http.StatusBadRequest, CodeBadRequest},
		{"missing size", `{}`, http.StatusBadRequest, CodeValidationFailed},
		{"zero size", `{"size":0}`, http.StatusBadRequest, CodeValidationFailed},
		{"unknown symmetry", `{"size":4,"symmetry":"v"}`, http.StatusBadRequest, CodeValidationFailed},
		{"unknown predicate", `{"size":4,"predicate":"aperiodic"}`, http.StatusBadRequest, CodeValidationFailed},
		{"odd size for ii", `{"size":5,"symmetry":"ii"}`, http.StatusBadRequest, CodeValidationFailed},
		{"negative budget", `{"size":4,"max_solutions":-1}`, http.StatusBadRequest, CodeValidationFailed},
		{"too large", `{"size":13}`, http.StatusUnprocessableEntity, CodeSizeTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/searches", tc.body)
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tc.status, rr.Body)
			}
			if resp := decode[ErrorResponse](t, rr); resp.Code != tc.code {
				t.Errorf("code = %q, want %q", resp.Code, tc.code)
			}
		})
	}
}

func TestSearch_SizeLimitReportsMax(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	rr := do(t, h, http.MethodPost, "/searches", `{"size":40}`)
	resp := decode[map[string]any](t, rr)
	if resp["max_size"] != float64(12) {
		t.Errorf("max_size = %v, want 12", resp["max_size"])
	}
}

func TestSearch_MaxSolutions(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	rr := do(t, h, http.MethodPost, "/searches", `{"size":5,"max_solutions":2,"workers":1}`)
	resp := decode[SearchResponse](t, rr)
	if !resp.Truncated || !slices.Equal(resp.Solutions, []string{"+ixi+", "+izi+"}) {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestSearch_LeafCap(t *testing.T) {
	h := newTestRouter(t, nil, Limits{MaxLeaves: 10, DefaultWorkers: 1})

	tests := []struct {
		body   string
		leaves uint64
	}{
		{`{"size":4}`, 10},
		{`{"size":4,"max_leaves":0}`, 10},
		{`{"size":4,"max_leaves":1000}`, 10},
		{`{"size":4,"max_leaves":3}`, 3},
	}
	for _, tc := range tests {
		resp := decode[SearchResponse](t, do(t, h, http.MethodPost, "/searches", tc.body))
		if !resp.Truncated || resp.Leaves != tc.leaves {
			t.Errorf("%s: truncated=%v leaves=%d, want leaves=%d", tc.body, resp.Truncated, resp.Leaves, tc.leaves)
		}
	}
}

func TestSearch_Timeout(t *testing.T) {
	h := newTestRouter(t, nil, Limits{Timeout: time.Nanosecond})

	resp := decode[SearchResponse](t, do(t, h, http.MethodPost, "/searches", `{"size":11}`))
	if !resp.Truncated {
		t.Errorf("expected truncated result after deadline, got %+v", resp.SearchSummary)
	}
}

// --- cache endpoints ---

func TestSearch_CacheRoundTrip(t *testing.T) {
	cache := &memCache{m: make(map[string]result.Result)}
	h := newTestRouter(t, cache, Limits{})

	first := decode[SearchResponse](t, do(t, h, http.MethodPost, "/searches", `{"size":4}`))
	second := decode[SearchResponse](t, do(t, h, http.MethodPost, "/searches", `{"size":4}`))
	if first.Cached || !second.Cached {
		t.Errorf("cached flags: first=%v second=%v", first.Cached, second.Cached)
	}
	if !slices.Equal(first.Solutions, second.Solutions) {
		t.Error("cached solutions differ")
	}

	list := decode[CachedRunList](t, do(t, h, http.MethodGet, "/searches", ""))
	if len(list.Items) != 1 || list.Items[0].Size != 4 || list.Items[0].Count != 6 {
		t.Fatalf("unexpected list %+v", list)
	}

	rr := do(t, h, http.MethodDelete, "/searches/odd_periodic/palindromic/4", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if len(cache.m) != 0 {
		t.Error("expected cache to be empty")
	}
}

func TestListCached_NoCache(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	rr := do(t, h, http.MethodGet, "/searches", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"items":[]`) {
		t.Errorf("status=%d body=%s", rr.Code, rr.Body)
	}
}

func TestForgetCached_BadParams(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	tests := []struct {
		path string
		code ErrorCode
	}{
		{"/searches/odd_periodic/palindromic/four", CodeBadRequest},
		{"/searches/aperiodic/palindromic/4", CodeValidationFailed},
		{"/searches/odd_periodic/iv/3", CodeValidationFailed},
	}
	for _, tc := range tests {
		rr := do(t, h, http.MethodDelete, tc.path, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", tc.path, rr.Code)
			continue
		}
		if resp := decode[ErrorResponse](t, rr); resp.Code != tc.code {
			t.Errorf("%s: code = %q, want %q", tc.path, resp.Code, tc.code)
		}
	}
}

// --- sequences ---

func TestCheckSequence(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	rr := do(t, h, http.MethodPost, "/sequences/check", `{"sequence":"J+q+J"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	resp := decode[CheckResponse](t, rr)

	if !resp.OPQS || resp.PQS || resp.Symmetric || !resp.Palindrome || resp.Length != 5 {
		t.Errorf("unexpected flags %+v", resp)
	}
	if resp.OddPeriodic[0] != [4]float64{5, 0, 0, 0} {
		t.Errorf("odd_periodic[0] = %v", resp.OddPeriodic[0])
	}
	if resp.Periodic[1] != [4]float64{2, 0, 0, 0} {
		t.Errorf("periodic[1] = %v", resp.Periodic[1])
	}
}

func TestCheckSequence_Errors(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	for _, body := range []string{`{"sequence":""}`, `{"sequence":"+a+"}`} {
		rr := do(t, h, http.MethodPost, "/sequences/check", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", body, rr.Code)
			continue
		}
		resp := decode[ErrorResponse](t, rr)
		if resp.Code != CodeValidationFailed || resp.Message == "internal error" {
			t.Errorf("%s: unexpected error %+v", body, resp)
		}
	}

	if rr := do(t, h, http.MethodPost, "/sequences/check", `[`); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d", rr.Code)
	}
}

func TestShrinkSequence(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	resp := decode[ShrinkResponse](t, do(t, h, http.MethodPost, "/sequences/shrink", `{"sequence":"+ijZji+"}`))
	if !resp.Found || resp.SubOPQS != "ijZji" || resp.Sequence != "+ijZji+" {
		t.Errorf("unexpected response %+v", resp)
	}

	resp = decode[ShrinkResponse](t, do(t, h, http.MethodPost, "/sequences/shrink", `{"sequence":"++++++"}`))
	if resp.Found || resp.SubOPQS != "" {
		t.Errorf("unexpected response %+v", resp)
	}
}

// --- misc ---

func TestAlphabet(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	entries := decode[[]AlphabetEntry](t, do(t, h, http.MethodGet, "/alphabet", ""))
	if len(entries) != 16 {
		t.Fatalf("expected 16 entries, got %d", len(entries))
	}
	var labels strings.Builder
	for _, e := range entries {
		labels.WriteString(e.Label)
	}
	if labels.String() != "+-iIjJkKqQxXyYzZ" {
		t.Errorf("labels = %q", labels.String())
	}
	if entries[8].Value != [4]float64{0.5, 0.5, 0.5, 0.5} {
		t.Errorf("q = %v", entries[8].Value)
	}
	if entries[2].Text != "i" {
		t.Errorf("i text = %q", entries[2].Text)
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	rr := do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[HealthResponse](t, rr)
	if resp.Status != "ok" || resp.Checks["engine"] != "ok" {
		t.Errorf("unexpected health %+v", resp)
	}
	if _, ok := resp.Checks["database"]; ok {
		t.Error("database check must be absent without a store")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	_ = do(t, h, http.MethodGet, "/alphabet", "")
	rr := do(t, h, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "qseq_http_requests_total") {
		t.Errorf("status=%d, metrics missing", rr.Code)
	}
}

func TestRouter_NotFoundIsJSON(t *testing.T) {
	h := newTestRouter(t, nil, Limits{})

	rr := do(t, h, http.MethodGet, "/sequences", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeNotFound {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestRouter_AuthAndRequestID(t *testing.T) {
	h := newTestRouter(t, nil, Limits{}, "secret")

	if rr := do(t, h, http.MethodPost, "/searches", `{"size":1}`); rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated search: status = %d", rr.Code)
	}

	rr := do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("health must be exempt, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestWideEventMiddleware_RequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	r := gochi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(zap.New(core)))
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logpkg.FromContext(r.Context()).Info("handler")
		w.WriteHeader(http.StatusNoContent)
	})

	rr := do(t, r, http.MethodGet, "/ping", "")
	requestID := rr.Header().Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header")
	}

	entries := logs.All()
	if len(entries) != 2 || entries[0].Message != "handler" || entries[1].Message != "http_request" {
		t.Fatalf("unexpected log entries %+v", entries)
	}
	for _, e := range entries {
		if got := e.ContextMap()["request_id"]; got != requestID {
			t.Errorf("%s: request_id = %v, want %q", e.Message, got, requestID)
		}
	}
	if got := entries[1].ContextMap()["status"]; got != int64(http.StatusNoContent) {
		t.Errorf("status = %v", got)
	}
}

func TestJSONRecoverer(t *testing.T) {
	r := gochi.NewRouter()
	r.Use(JSONRecoverer(zap.NewNop()))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rr := do(t, r, http.MethodGet, "/boom", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeInternalError {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestSafeDomainMessage(t *testing.T) {
	if got := safeDomainMessage(context.DeadlineExceeded); got != "internal error" {
		t.Errorf("internal errors must be masked, got %q", got)
	}
	err := domain.NewSizeLimit(30, 12)
	if got := safeDomainMessage(err); got != err.Error() {
		t.Errorf("client errors must be reported, got %q", got)
	}
}
