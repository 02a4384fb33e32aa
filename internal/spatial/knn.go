package spatial

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/vptree"
)

// Index is a nearest-neighbor index over a reference point set. Neighbor
// identifiers returned by Query are dense 0-based positions into the
// reference slice passed to NewIndex; callers own the remapping from
// positions back to their record keys.
type Index struct {
	tree *vptree.Tree
	size int
}

// NewIndex builds the index. The reference slice may be empty, in which
// case every query returns no neighbors.
func NewIndex(refs []Location) (*Index, error) {
	comparables := make([]vptree.Comparable, len(refs))
	for i, loc := range refs {
		comparables[i] = newPoint(i, loc)
	}
	tree, err := vptree.New(comparables, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("build vantage point tree: %w", err)
	}
	return &Index{tree: tree, size: len(refs)}, nil
}

// Size returns the number of reference points.
func (ix *Index) Size() int { return ix.size }

// Query returns the positions of the k nearest reference points to target,
// ordered by ascending great-circle distance. When k exceeds the reference
// set size, every reference point is returned; callers must tolerate fewer
// than k neighbors.
func (ix *Index) Query(target Location, k int) []int {
	if ix.size == 0 || k <= 0 {
		return nil
	}
	if k > ix.size {
		k = ix.size
	}

	keeper := vptree.NewNKeeper(k)
	ix.tree.NearestSet(keeper, newPoint(-1, target))

	type hit struct {
		id   int
		dist float64
	}
	hits := make([]hit, 0, k)
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue // unfilled keeper slot
		}
		hits = append(hits, hit{cd.Comparable.(point).id, cd.Dist})
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].dist < hits[b].dist })

	ids := make([]int, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

// Aggregate reduces the neighbor positions for one target to a single
// metric value.
type Aggregate func(neighborIDs []int) (float64, error)

// Engine runs nearest-neighbor enrichment queries over row batches. Targets
// are independent, so batches fan out over a worker pool and results are
// recombined by index alignment only.
type Engine struct {
	workers int
}

// NewEngine returns an engine with the given fan-out; zero or negative
// means GOMAXPROCS.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{workers: workers}
}

// ClosestMetric computes one aggregated value per target from its k nearest
// reference points. When selfID returns a non-negative reference position
// for a target, that position is excluded from the target's own
// neighborhood (self-referential joins must not let a row see itself).
func (e *Engine) ClosestMetric(ctx context.Context, targets []Location, ix *Index, k int, agg Aggregate, selfID func(target int) int) ([]float64, error) {
	results := make([]float64, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	batch := (len(targets) + e.workers - 1) / e.workers
	if batch < 1 {
		batch = 1
	}

	for start := 0; start < len(targets); start += batch {
		end := start + batch
		if end > len(targets) {
			end = len(targets)
		}
		start, end := start, end
		g.Go(func() error {
			for ti := start; ti < end; ti++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				self := -1
				if selfID != nil {
					self = selfID(ti)
				}

				query := k
				if self >= 0 {
					query = k + 1
				}
				ids := ix.Query(targets[ti], query)
				if self >= 0 {
					ids = remove(ids, self)
					if len(ids) > k {
						ids = ids[:k]
					}
				}

				v, err := agg(ids)
				if err != nil {
					return fmt.Errorf("aggregate target %d: %w", ti, err)
				}
				results[ti] = v
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func remove(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
