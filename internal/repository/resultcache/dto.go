package resultcache

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/qseq/internal/domain/search/predicate"
	"github.com/kailas-cloud/qseq/internal/domain/search/request"
	"github.com/kailas-cloud/qseq/internal/domain/search/result"
	"github.com/kailas-cloud/qseq/internal/domain/search/symmetry"
)

// resultRow is the JSON-serializable representation of a complete result.
type resultRow struct {
	Size      int      `json:"size"`
	Predicate string   `json:"predicate"`
	Symmetry  string   `json:"symmetry"`
	Solutions []string `json:"solutions"`
	Leaves    uint64   `json:"leaves"`
	ElapsedMs int64    `json:"elapsed_ms"`
}

// summaryRow is the value stored per field of the runs index hash.
type summaryRow struct {
	Count     int    `json:"count"`
	Leaves    uint64 `json:"leaves"`
	ElapsedMs int64  `json:"elapsed_ms"`
	StoredAt  int64  `json:"stored_at"`
}

func encodeResult(res result.Result) ([]byte, error) {
	solutions := res.Solutions()
	if solutions == nil {
		solutions = []string{}
	}
	data, err := json.Marshal(resultRow{
		Size:      res.Size(),
		Predicate: string(res.Predicate()),
		Symmetry:  string(res.Symmetry()),
		Solutions: solutions,
		Leaves:    res.Leaves(),
		ElapsedMs: res.Elapsed().Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return data, nil
}

// decodeResult hydrates a result and checks it belongs to req's search space.
func decodeResult(data []byte, req request.Request) (result.Result, error) {
	var row resultRow
	if err := json.Unmarshal(data, &row); err != nil {
		return result.Result{}, fmt.Errorf("unmarshal result: %w", err)
	}
	if row.Size != req.Size() ||
		row.Predicate != string(req.Predicate()) ||
		row.Symmetry != string(req.Symmetry()) {
		return result.Result{}, fmt.Errorf("cached entry %d:%s:%s does not match %s",
			row.Size, row.Predicate, row.Symmetry, req.Key())
	}
	return result.New(
		row.Size, predicate.Predicate(row.Predicate), symmetry.Symmetry(row.Symmetry),
		row.Solutions, row.Leaves, false, time.Duration(row.ElapsedMs)*time.Millisecond,
	), nil
}

func encodeSummary(s result.Summary) (string, error) {
	data, err := json.Marshal(summaryRow{
		Count:     s.Count,
		Leaves:    s.Leaves,
		ElapsedMs: s.Elapsed.Milliseconds(),
		StoredAt:  s.StoredAt.Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	return string(data), nil
}

// decodeSummary parses an index field ("predicate:symmetry:size") and its value.
func decodeSummary(field, value string) (result.Summary, error) {
	parts := strings.Split(field, ":")
	if len(parts) != 3 {
		return result.Summary{}, fmt.Errorf("invalid index field %q", field)
	}
	size, err := strconv.Atoi(parts[2])
	if err != nil {
		return result.Summary{}, fmt.Errorf("invalid size in index field %q: %w", field, err)
	}

	var row summaryRow
	if err := json.Unmarshal([]byte(value), &row); err != nil {
		return result.Summary{}, fmt.Errorf("unmarshal summary %q: %w", field, err)
	}
	return result.Summary{
		Size:      size,
		Predicate: predicate.Predicate(parts[0]),
		Symmetry:  symmetry.Symmetry(parts[1]),
		Count:     row.Count,
		Leaves:    row.Leaves,
		Elapsed:   time.Duration(row.ElapsedMs) * time.Millisecond,
		StoredAt:  time.Unix(row.StoredAt, 0).UTC(),
	}, nil
}
