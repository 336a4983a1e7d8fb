package chi

import (
	"time"

	"github.com/kailas-cloud/qseq/internal/domain/quaternion"
	"github.com/kailas-cloud/qseq/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/qseq/internal/usecase/search"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeSizeTooLarge     ErrorCode = "size_too_large"
	CodeNotFound         ErrorCode = "not_found"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /searches. Absent fields take server defaults.
type SearchRequest struct {
	Size         *int    `json:"size"`
	Predicate    string  `json:"predicate,omitempty"`
	Symmetry     string  `json:"symmetry,omitempty"`
	MaxSolutions int     `json:"max_solutions,omitempty"`
	MaxLeaves    *uint64 `json:"max_leaves,omitempty"`
	Workers      int     `json:"workers,omitempty"`
}

// SearchSummary describes a finished run.
type SearchSummary struct {
	Size      int    `json:"size"`
	Predicate string `json:"predicate"`
	Symmetry  string `json:"symmetry"`
	Count     int    `json:"count"`
	Leaves    uint64 `json:"leaves"`
	Truncated bool   `json:"truncated"`
	Cached    bool   `json:"cached"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// SearchResponse is the buffered body of POST /searches.
type SearchResponse struct {
	SearchSummary
	Solutions []string `json:"solutions"`
}

// StreamLine is one NDJSON line of a streamed search: a solution, or the
// final summary.
type StreamLine struct {
	Solution string         `json:"solution,omitempty"`
	Result   *SearchSummary `json:"result,omitempty"`
}

// CachedRun is an entry of GET /searches.
type CachedRun struct {
	Size      int       `json:"size"`
	Predicate string    `json:"predicate"`
	Symmetry  string    `json:"symmetry"`
	Count     int       `json:"count"`
	Leaves    uint64    `json:"leaves"`
	ElapsedMs int64     `json:"elapsed_ms"`
	StoredAt  time.Time `json:"stored_at"`
}

// CachedRunList is the body of GET /searches.
type CachedRunList struct {
	Items []CachedRun `json:"items"`
}

// SequenceRequest is the body of the /sequences endpoints.
type SequenceRequest struct {
	Sequence string `json:"sequence"`
}

// CheckResponse is the body of POST /sequences/check. Quaternions are
// [w, x, y, z] arrays indexed by shift. Symmetric means v[t] == v[n-t] for
// t >= 1; Palindrome means v[t] == v[n-1-t], the shape every palindromic
// search result has.
type CheckResponse struct {
	Sequence    string       `json:"sequence"`
	Length      int          `json:"length"`
	PQS         bool         `json:"pqs"`
	OPQS        bool         `json:"opqs"`
	Symmetric   bool         `json:"symmetric"`
	Palindrome  bool         `json:"palindrome"`
	Periodic    [][4]float64 `json:"periodic"`
	OddPeriodic [][4]float64 `json:"odd_periodic"`
}

// ShrinkResponse is the body of POST /sequences/shrink.
type ShrinkResponse struct {
	Sequence string `json:"sequence"`
	Found    bool   `json:"found"`
	SubOPQS  string `json:"sub_opqs,omitempty"`
}

// AlphabetEntry is one symbol of GET /alphabet.
type AlphabetEntry struct {
	Index int        `json:"index"`
	Label string     `json:"label"`
	Value [4]float64 `json:"value"`
	Text  string     `json:"text"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func summaryFromResult(r *result.Result) SearchSummary {
	return SearchSummary{
		Size:      r.Size(),
		Predicate: string(r.Predicate()),
		Symmetry:  string(r.Symmetry()),
		Count:     r.Count(),
		Leaves:    r.Leaves(),
		Truncated: r.Truncated(),
		Cached:    r.Cached(),
		ElapsedMs: r.Elapsed().Milliseconds(),
	}
}

func responseFromResult(r *result.Result) SearchResponse {
	solutions := r.Solutions()
	if solutions == nil {
		solutions = []string{}
	}
	return SearchResponse{SearchSummary: summaryFromResult(r), Solutions: solutions}
}

func cachedRunFromSummary(s result.Summary) CachedRun {
	return CachedRun{
		Size:      s.Size,
		Predicate: string(s.Predicate),
		Symmetry:  string(s.Symmetry),
		Count:     s.Count,
		Leaves:    s.Leaves,
		ElapsedMs: s.Elapsed.Milliseconds(),
		StoredAt:  s.StoredAt.UTC(),
	}
}

func checkFromAnalysis(a searchuc.Analysis) CheckResponse {
	return CheckResponse{
		Sequence:    a.Sequence,
		Length:      len(a.Periodic),
		PQS:         a.PQS,
		OPQS:        a.OPQS,
		Symmetric:   a.Symmetric,
		Palindrome:  a.Palindrome,
		Periodic:    quaternionsToArrays(a.Periodic),
		OddPeriodic: quaternionsToArrays(a.OddPeriodic),
	}
}

func quaternionsToArrays(qs []quaternion.Quaternion) [][4]float64 {
	out := make([][4]float64, len(qs))
	for i, q := range qs {
		out[i] = quaternionToArray(q)
	}
	return out
}

func quaternionToArray(q quaternion.Quaternion) [4]float64 {
	w, x, y, z := q.Components()
	return [4]float64{w, x, y, z}
}

func alphabetEntries() []AlphabetEntry {
	alphabet := quaternion.Alphabet()
	out := make([]AlphabetEntry, len(alphabet))
	for i, q := range alphabet {
		out[i] = AlphabetEntry{
			Index: i,
			Label: string(quaternion.Label(q)),
			Value: quaternionToArray(q),
			Text:  q.String(),
		}
	}
	return out
}
