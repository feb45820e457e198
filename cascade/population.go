// Package cascade implements the information cascade dynamics of the
// network-breaking model: individuals with private thresholds sample one of
// two correlated information sources, activity spreads through observed
// ties, and behavior is scored against what each individual would have
// done with direct information.
package cascade

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Source identifies one of the two information sources.
type Source int

const (
	SourceA Source = iota
	SourceB
)

func (s Source) String() string {
	if s == SourceB {
		return "B"
	}
	return "A"
}

// Population holds the fixed attributes of every individual.
type Population struct {
	Thresholds []float64
	Types      []Source
}

// NewPopulation draws thresholds uniformly from [lower, upper) and assigns
// each individual to source A or B with equal probability.
func NewPopulation(n int, lower, upper float64, rng *rand.Rand) (*Population, error) {
	if n < 1 {
		return nil, errors.Errorf("population size %d must be positive", n)
	}
	if upper <= lower {
		return nil, errors.Errorf("threshold range [%g, %g) is empty", lower, upper)
	}

	return &Population{
		Thresholds: SeedThresholds(n, lower, upper, rng),
		Types:      AssignTypes(n, rng),
	}, nil
}

func SeedThresholds(n int, lower, upper float64, rng *rand.Rand) []float64 {
	dist := distuv.Uniform{Min: lower, Max: upper, Src: rng}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

func AssignTypes(n int, rng *rand.Rand) []Source {
	out := make([]Source, n)
	for i := range out {
		out[i] = Source(rng.IntN(2))
	}
	return out
}

// Size returns the number of individuals.
func (p *Population) Size() int { return len(p.Thresholds) }

// TypeMatrix renders the types as an n×2 one-hot matrix, with column 0 for
// source A and column 1 for source B.
func (p *Population) TypeMatrix() [][]int {
	out := make([][]int, len(p.Types))
	for i, s := range p.Types {
		out[i] = make([]int, 2)
		out[i][s] = 1
	}
	return out
}

// Counts returns the number of individuals attending to each source.
func (p *Population) Counts() (a, b int) {
	for _, s := range p.Types {
		if s == SourceA {
			a++
		} else {
			b++
		}
	}
	return a, b
}
