// Package match pairs treated units with control units of similar
// propensity score. The default policy is 1-nearest-neighbor matching
// with replacement over a sorted score index; an explicit
// without-replacement variant removes each control from the pool as it is
// used.
package match

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
)

// Unit is one row entering the matcher: its original row identifier and
// its scalar propensity score.
type Unit struct {
	ID    int
	Score float64
}

// Pair maps one treated unit to its matched control, with the absolute
// score gap realized by the pairing.
type Pair struct {
	TreatedID int
	ControlID int
	Distance  float64
}

// PairSet is the matcher's output: exactly one pair per treated unit.
// Under with-replacement matching the same control may appear in several
// pairs; that is the intended policy, not an error.
type PairSet struct {
	Pairs []Pair
}

// Len returns the number of pairings.
func (ps *PairSet) Len() int { return len(ps.Pairs) }

// TreatedIDs returns the treated identifiers in pairing order.
func (ps *PairSet) TreatedIDs() []int {
	ids := make([]int, len(ps.Pairs))
	for i, p := range ps.Pairs {
		ids[i] = p.TreatedID
	}
	return ids
}

// ControlIDs returns the matched control identifiers in pairing order.
// Duplicates are preserved; the matched dataset is a multiset.
func (ps *PairSet) ControlIDs() []int {
	ids := make([]int, len(ps.Pairs))
	for i, p := range ps.Pairs {
		ids[i] = p.ControlID
	}
	return ids
}

// MatchedIDs returns all treated identifiers followed by all matched
// control identifiers: the row set of the matched dataset.
func (ps *PairSet) MatchedIDs() []int {
	return append(ps.TreatedIDs(), ps.ControlIDs()...)
}

// InsufficientControlsError reports a control pool too small to satisfy
// the requested matching.
type InsufficientControlsError struct {
	Needed    int
	Available int
}

func (e *InsufficientControlsError) Error() string {
	return fmt.Sprintf("match: control pool has %d units, %d required", e.Available, e.Needed)
}

// ErrNoTreated is returned when the treated set is empty.
var ErrNoTreated = errors.New("match: treated set is empty")

// Match pairs every treated unit with the control unit of nearest
// propensity score, with replacement. Equidistant controls are broken
// deterministically toward the lower original row identifier. The control
// index is built once and shared read-only across worker goroutines, so
// the search is O(treated * log(control)).
func Match(treated, controls []Unit) (*PairSet, error) {
	if len(treated) == 0 {
		return nil, ErrNoTreated
	}
	if len(controls) == 0 {
		return nil, &InsufficientControlsError{Needed: 1, Available: 0}
	}

	idx := buildIndex(controls)
	pairs := make([]Pair, len(treated))

	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	perWorker := (len(treated) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := min(start+perWorker, len(treated))
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				tu := treated[i]
				c := idx[nearest(idx, tu.Score)]
				pairs[i] = Pair{
					TreatedID: tu.ID,
					ControlID: c.ID,
					Distance:  math.Abs(tu.Score - c.Score),
				}
			}
		}(start, end)
	}
	wg.Wait()

	return &PairSet{Pairs: pairs}, nil
}

// MatchWithoutReplacement pairs treated units with distinct controls,
// removing each matched control from the pool. Treated units are
// processed in the order given by less (nil means descending propensity
// score, ties by ascending identifier), since each pairing changes the
// pool available to the rest: every distance is minimal against the pool
// as it stood when that pairing was computed.
func MatchWithoutReplacement(treated, controls []Unit, less func(a, b Unit) bool) (*PairSet, error) {
	if len(treated) == 0 {
		return nil, ErrNoTreated
	}
	if len(controls) < len(treated) {
		return nil, &InsufficientControlsError{Needed: len(treated), Available: len(controls)}
	}
	if less == nil {
		less = func(a, b Unit) bool {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.ID < b.ID
		}
	}

	order := append([]Unit(nil), treated...)
	sort.SliceStable(order, func(i, j int) bool { return less(order[i], order[j]) })

	pool := buildIndex(controls)
	pairs := make([]Pair, 0, len(order))
	for _, tu := range order {
		k := nearest(pool, tu.Score)
		c := pool[k]
		pairs = append(pairs, Pair{
			TreatedID: tu.ID,
			ControlID: c.ID,
			Distance:  math.Abs(tu.Score - c.Score),
		})
		pool = append(pool[:k], pool[k+1:]...)
	}
	return &PairSet{Pairs: pairs}, nil
}

// buildIndex returns the controls sorted by score, ties by ascending
// identifier. The tie order makes the first unit of every equal-score run
// the lowest-identifier one.
func buildIndex(controls []Unit) []Unit {
	idx := append([]Unit(nil), controls...)
	sort.Slice(idx, func(i, j int) bool {
		if idx[i].Score != idx[j].Score {
			return idx[i].Score < idx[j].Score
		}
		return idx[i].ID < idx[j].ID
	})
	return idx
}

// nearest returns the index in idx of the control nearest to score.
// Equidistant candidates resolve to the lowest identifier.
func nearest(idx []Unit, score float64) int {
	i := sort.Search(len(idx), func(k int) bool { return idx[k].Score >= score })

	// Candidate on each side of the insertion point.
	dl, dr := math.Inf(1), math.Inf(1)
	if i > 0 {
		dl = score - idx[i-1].Score
	}
	if i < len(idx) {
		dr = idx[i].Score - score
	}

	switch {
	case dl < dr:
		// idx[i-1] closes the gap, but equal-score runs are tie-broken by
		// their first (lowest-identifier) element.
		return runStart(idx, i-1)
	case dr < dl:
		// idx[i] is already the first element of its equal-score run.
		return i
	default:
		// Both sides equidistant: lowest identifier across both runs wins.
		left := runStart(idx, i-1)
		if idx[left].ID < idx[i].ID {
			return left
		}
		return i
	}
}

// runStart returns the index of the first element in the equal-score run
// containing idx[k].
func runStart(idx []Unit, k int) int {
	s := idx[k].Score
	return sort.Search(k, func(j int) bool { return idx[j].Score >= s })
}
