package cascade

import (
	"testing"

	"github.com/cascade-models/netbreak/network"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPropagateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 40).Draw(t, "n")
		k := rapid.IntRange(1, n-1).Draw(t, "k")
		psi := rapid.Float64Range(0.01, 1).Draw(t, "psi")
		gamma := float64(rapid.IntRange(-10, 10).Draw(t, "gamma")) / 10
		rng := testRand(rapid.Uint64().Draw(t, "seed"))

		nw, err := network.Seed(n, k, network.Random, rng)
		require.NoError(t, err)
		pop, err := NewPopulation(n, 0, 1, rng)
		require.NoError(t, err)
		gen, err := NewGenerator(gamma, rng)
		require.NoError(t, err)

		r := Sample(pop, gen, psi, rng)
		sampled := append([]bool{}, r.Active...)
		Propagate(nw, pop, r)

		samplers := 0
		for i := 0; i < n; i++ {
			if r.Samplers[i] {
				samplers++
				require.Equal(t, sampled[i], r.Active[i], "sampler %d changed state", i)
				continue
			}
			if sampled[i] {
				require.True(t, r.Active[i], "individual %d deactivated", i)
			}
		}
		require.Equal(t, SamplerCount(n, psi), samplers)

		row := Stats(0, pop, r)
		require.Equal(t, samplers, row.Samplers)
		require.LessOrEqual(t, row.SamplersActive, row.TotalActive)
		require.Equal(t, row.TotalActive, row.ActiveA+row.ActiveB)

		// no inactive non-sampler is left above its threshold
		for i := 0; i < n; i++ {
			neighbors := nw.Neighbors(i)
			if r.Active[i] || r.Samplers[i] || len(neighbors) == 0 {
				continue
			}
			active := 0
			for _, j := range neighbors {
				if r.Active[j] {
					active++
				}
			}
			require.LessOrEqual(t, float64(active)/float64(len(neighbors)), pop.Thresholds[i])
		}
	})
}
