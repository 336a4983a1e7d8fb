package resultcache

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qseq/internal/db"
	"github.com/kailas-cloud/qseq/internal/domain/search/predicate"
	"github.com/kailas-cloud/qseq/internal/domain/search/request"
	"github.com/kailas-cloud/qseq/internal/domain/search/symmetry"
)

// mockStore is an in-memory store with optional error injection.
type mockStore struct {
	kv     map[string][]byte
	ttls   map[string]time.Duration
	hashes map[string]map[string]string

	getErr  error
	setErr  error
	hsetErr error
	hgetErr error
	scanErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		kv:     make(map[string][]byte),
		ttls:   make(map[string]time.Duration),
		hashes: make(map[string]map[string]string),
	}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.kv[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.kv, key)
	delete(m.hashes, key)
	return nil
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if m.hgetErr != nil {
		return nil, m.hgetErr
	}
	out := make(map[string]string, len(m.hashes[key]))
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *mockStore) HDel(_ context.Context, key string, fields ...string) error {
	for _, f := range fields {
		delete(m.hashes[key], f)
	}
	return nil
}

func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.kv {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	r := New(ms, time.Hour, nil, zap.NewNop())
	r.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return r, ms
}

func mustRequest(t *testing.T, size int, p predicate.Predicate, s symmetry.Symmetry) request.Request {
	t.Helper()
	req, err := request.New(size, p, s, 0, 0, 1)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}
