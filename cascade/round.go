package cascade

import (
	"math"
	"math/rand/v2"

	"github.com/cascade-models/netbreak/network"
)

// Round is the state of one time step: which individuals sampled their
// source directly and which are active.
type Round struct {
	Stimuli  Stimuli
	Samplers []bool
	Active   []bool
}

// SamplerCount returns round(psi × n), clamped to [1, n].
func SamplerCount(n int, psi float64) int {
	count := int(math.Round(psi * float64(n)))
	if count < 1 {
		count = 1
	}
	if count > n {
		count = n
	}
	return count
}

// Sample draws stimuli and a random set of samplers. A sampler becomes
// active when the source it attends to exceeds its threshold.
func Sample(pop *Population, gen *Generator, psi float64, rng *rand.Rand) *Round {
	n := pop.Size()
	r := &Round{
		Stimuli:  gen.Draw(),
		Samplers: make([]bool, n),
		Active:   make([]bool, n),
	}

	for _, i := range rng.Perm(n)[:SamplerCount(n, psi)] {
		r.Samplers[i] = true
		r.Active[i] = r.Stimuli.For(pop.Types[i]) > pop.Thresholds[i]
	}

	return r
}

// Propagate spreads activity through the network. In synchronous sweeps,
// every inactive non-sampler whose fraction of active observed neighbors
// exceeds its threshold becomes active, until a sweep changes nothing.
// Samplers keep the state their direct information gave them and active
// individuals never deactivate.
func Propagate(nw *network.Network, pop *Population, r *Round) {
	n := pop.Size()
	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		if !r.Samplers[i] {
			neighbors[i] = nw.Neighbors(i)
		}
	}

	next := make([]bool, n)
	for {
		copy(next, r.Active)
		changed := false
		for i := 0; i < n; i++ {
			if r.Active[i] || r.Samplers[i] || len(neighbors[i]) == 0 {
				continue
			}

			active := 0
			for _, j := range neighbors[i] {
				if r.Active[j] {
					active++
				}
			}
			if float64(active)/float64(len(neighbors[i])) > pop.Thresholds[i] {
				next[i] = true
				changed = true
			}
		}
		if !changed {
			return
		}
		copy(r.Active, next)
	}
}

// Simulate samples stimuli and propagates the resulting cascade.
func Simulate(nw *network.Network, pop *Population, gen *Generator, psi float64, rng *rand.Rand) *Round {
	r := Sample(pop, gen, psi, rng)
	Propagate(nw, pop, r)
	return r
}

// Row is the size of a cascade at time step T, broken down by samplers and
// by the source individuals attend to.
type Row struct {
	T              int `bson:"t" json:"t" yaml:"t"`
	Samplers       int `bson:"samplers" json:"samplers" yaml:"samplers"`
	SamplersActive int `bson:"samplers_active" json:"samplers_active" yaml:"samplers_active"`
	SamplerA       int `bson:"sampler_A" json:"sampler_A" yaml:"sampler_A"`
	SamplerB       int `bson:"sampler_B" json:"sampler_B" yaml:"sampler_B"`
	TotalActive    int `bson:"total_active" json:"total_active" yaml:"total_active"`
	ActiveA        int `bson:"active_A" json:"active_A" yaml:"active_A"`
	ActiveB        int `bson:"active_B" json:"active_B" yaml:"active_B"`
}

// Stats summarizes r as the cascade row for time step t.
func Stats(t int, pop *Population, r *Round) Row {
	row := Row{T: t}
	for i, src := range pop.Types {
		if r.Samplers[i] {
			row.Samplers++
			if r.Active[i] {
				row.SamplersActive++
			}
			if src == SourceA {
				row.SamplerA++
			} else {
				row.SamplerB++
			}
		}
		if r.Active[i] {
			row.TotalActive++
			if src == SourceA {
				row.ActiveA++
			} else {
				row.ActiveB++
			}
		}
	}
	return row
}
