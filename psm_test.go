package psm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkovalevski/propensity-score/pkg/dataset"
	"github.com/lkovalevski/propensity-score/pkg/propensity"
	"github.com/lkovalevski/propensity-score/pkg/sim"
)

// TestRunRecoversSimulatedEffect is the end-to-end regression scenario:
// 1000 units, two standard-normal covariates, treatment assigned with
// logistic coefficients (0.5, -0.25), outcome 3*treat + 2*x1 + x2 + noise.
// The pipeline estimate must land near the true effect of 3 and matching
// must strictly improve covariate balance.
func TestRunRecoversSimulatedEffect(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ds, err := sim.Generate(rng, sim.DefaultConfig)
	require.NoError(t, err)

	res, err := Run(ds, func(o *Options) {
		o.Propensity = []func(*propensity.Options){
			func(po *propensity.Options) { po.Rand = rng },
		}
	})
	require.NoError(t, err)

	assert.InDelta(t, 3.0, res.Effect, 1.0)
	assert.Less(t, res.SMDAfter, res.SMDBefore, "matching must improve balance")

	// One pairing per treated unit, and the matched dataset holds one row
	// per side of every pairing.
	treatedCount := res.Scored.TreatedSubset().Len()
	assert.Equal(t, treatedCount, res.Pairs.Len())
	assert.Equal(t, 2*treatedCount, res.Matched.Len())
	assert.True(t, res.Matched.Scored())
}

func TestRunWithoutReplacement(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	full, err := sim.Generate(rng, sim.DefaultConfig)
	require.NoError(t, err)

	// Without replacement needs at least as many controls as treated
	// units; cap the treated group so the draw cannot violate that.
	kept := 0
	ds := full.Subset(func(i int) bool {
		if !full.Treated(i) {
			return true
		}
		kept++
		return kept <= 400
	})

	res, err := Run(ds, func(o *Options) {
		o.WithoutReplacement = true
		o.Propensity = []func(*propensity.Options){
			func(po *propensity.Options) { po.Rand = rng },
		}
	})
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, p := range res.Pairs.Pairs {
		assert.False(t, seen[p.ControlID], "control %d reused", p.ControlID)
		seen[p.ControlID] = true
	}
	assert.InDelta(t, 3.0, res.Effect, 1.0)
}

func TestRunFailsOnConstantTreatment(t *testing.T) {
	// Every unit treated: the propensity stage refuses the data before the
	// matcher can ever see an empty control pool.
	rows := [][]float64{
		{0.1, 1, 10},
		{0.2, 1, 20},
		{0.3, 1, 30},
	}
	ds, err := dataset.Load(rows, []string{"x1", "treat", "y"}, []string{"x1"}, "treat", "y")
	require.NoError(t, err)

	_, err = Run(ds)
	var derr *propensity.DegenerateDataError
	require.ErrorAs(t, err, &derr)
}
