package search

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/qseq/internal/domain/quaternion"
	"github.com/kailas-cloud/qseq/internal/domain/search/predicate"
	"github.com/kailas-cloud/qseq/internal/domain/search/request"
	"github.com/kailas-cloud/qseq/internal/domain/search/result"
	"github.com/kailas-cloud/qseq/internal/domain/search/symmetry"
	"github.com/kailas-cloud/qseq/internal/domain/sequence"
)

// tasksPerWorker is the minimum number of frontier tasks queued per worker.
const tasksPerWorker = 4

// EmitFunc receives each solution as it is found. Calls are serialized.
type EmitFunc func(solution string)

// Engine enumerates symmetric sequences over the alphabet and keeps those
// satisfying the requested predicate.
type Engine struct {
	alphabet [quaternion.Size]quaternion.Quaternion
}

// NewEngine creates a search engine over the 16-symbol alphabet.
func NewEngine() *Engine {
	return &Engine{alphabet: quaternion.Alphabet()}
}

// Run performs a depth-first search. Position 0 is fixed to the identity,
// depth d assigns one symbol to position d and to the position the symmetry
// ties to it, and complete assignments are tested against the predicate.
//
// The frontier of the first levels is split into tasks run by req.Workers()
// goroutines, each with its own buffer. Budgets and ctx cancellation stop all
// workers; the result is then marked truncated and holds partial counts.
// emit may be nil.
func (e *Engine) Run(ctx context.Context, req request.Request, emit EmitFunc) result.Result {
	size := req.Size()
	if size < 1 {
		panic("search: size must be >= 1")
	}

	start := time.Now()
	r := &run{
		ctx:          ctx,
		alphabet:     &e.alphabet,
		size:         size,
		depth:        req.Symmetry().Depth(size),
		symmetry:     req.Symmetry(),
		predicate:    req.Predicate(),
		maxSolutions: req.MaxSolutions(),
		maxLeaves:    req.MaxLeaves(),
		emit:         emit,
	}
	stopWatch := context.AfterFunc(ctx, func() { r.stop.Store(true) })
	defer stopWatch()
	if ctx.Err() != nil {
		r.stop.Store(true)
	}

	seed := newWorker(r, sequence.New(size))
	seed.assign(0, 0)

	free := r.depth - 1
	if free <= 0 {
		seed.descend(r.depth)
	} else {
		r.parallel(seed, req.Workers(), free)
	}

	return r.result(time.Since(start))
}

// run is the state shared by all workers of a single search.
type run struct {
	ctx          context.Context
	alphabet     *[quaternion.Size]quaternion.Quaternion
	size         int
	depth        int
	symmetry     symmetry.Symmetry
	predicate    predicate.Predicate
	maxSolutions int
	maxLeaves    uint64
	emit         EmitFunc

	stop    atomic.Bool
	skipped atomic.Bool
	leaves  atomic.Uint64

	mu    sync.Mutex
	found []found
}

// found is a solution with its enumeration path (alphabet index per free position).
type found struct {
	path     []byte
	solution string
}

func (r *run) parallel(seed *worker, workers, free int) {
	levels := 1
	tasks := quaternion.Size
	for levels < free && tasks < tasksPerWorker*workers {
		levels++
		tasks *= quaternion.Size
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for task := range tasks {
		if r.stop.Load() {
			r.skipped.Store(true)
			break
		}
		g.Go(func() error {
			w := newWorker(r, seed.buf.Clone())
			rem := task
			for level := levels; level >= 1; level-- {
				w.assign(level, rem%quaternion.Size)
				rem /= quaternion.Size
			}
			w.descend(levels + 1)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *run) collect(path []byte, solution string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxSolutions > 0 && len(r.found) >= r.maxSolutions {
		r.stop.Store(true)
		r.skipped.Store(true)
		return
	}
	r.found = append(r.found, found{path: path, solution: solution})
	if r.emit != nil {
		r.emit(solution)
	}
	// emit may cancel ctx; stop before the AfterFunc goroutine gets scheduled.
	if r.ctx.Err() != nil || (r.maxSolutions > 0 && len(r.found) == r.maxSolutions) {
		r.stop.Store(true)
	}
}

func (r *run) result(elapsed time.Duration) result.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	slices.SortFunc(r.found, func(a, b found) int { return bytes.Compare(a.path, b.path) })
	solutions := make([]string, len(r.found))
	for i, f := range r.found {
		solutions[i] = f.solution
	}

	leaves := r.leaves.Load()
	if r.maxLeaves > 0 && leaves > r.maxLeaves {
		leaves = r.maxLeaves
	}

	return result.New(r.size, r.predicate, r.symmetry, solutions, leaves, r.skipped.Load(), elapsed)
}

// worker owns a private sequence buffer. Sibling branches overwrite the same
// slot pair, so no undo step is needed when backtracking.
type worker struct {
	run  *run
	buf  *sequence.Sequence
	path []byte
}

func newWorker(r *run, buf *sequence.Sequence) *worker {
	return &worker{run: r, buf: buf, path: make([]byte, max(r.depth, 1))}
}

// assign writes alphabet[symbol] at index and at the position tied to it.
func (w *worker) assign(index, symbol int) {
	q := w.run.alphabet[symbol]
	w.buf.SetValue(q, index)
	w.path[index] = byte(symbol)
	if pos, negate, ok := w.run.symmetry.Mirror(w.run.size, index); ok {
		if negate {
			q = q.Neg()
		}
		w.buf.SetValue(q, pos)
	}
}

func (w *worker) descend(index int) {
	if w.run.stop.Load() {
		w.run.skipped.Store(true)
		return
	}
	if index >= w.run.depth {
		w.leaf()
		return
	}
	for symbol := range w.run.alphabet {
		w.assign(index, symbol)
		w.descend(index + 1)
	}
}

func (w *worker) leaf() {
	n := w.run.leaves.Add(1)
	if w.run.maxLeaves > 0 && n > w.run.maxLeaves {
		w.run.stop.Store(true)
		w.run.skipped.Store(true)
		return
	}
	if w.run.predicate.Holds(w.buf) {
		w.run.collect(slices.Clone(w.path[1:]), w.buf.String())
	}
}
