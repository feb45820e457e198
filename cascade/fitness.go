package cascade

import (
	"context"
	"math/rand/v2"

	"github.com/cascade-models/netbreak/network"
	"github.com/pkg/errors"
)

// Fitness is the outcome of repeated cascades over a frozen network.
type Fitness struct {
	Behavior []Behavior `bson:"behavior" json:"behavior" yaml:"behavior"`
	Cascades []Row      `bson:"cascades" json:"cascades" yaml:"cascades"`
}

// AssessFitness runs trials independent rounds of sampling and cascading
// over nw without rewiring it, tallying per-individual behavior and the
// size of every cascade.
func AssessFitness(ctx context.Context, nw *network.Network, pop *Population, gen *Generator, psi float64, trials int, rng *rand.Rand) (*Fitness, error) {
	out := &Fitness{
		Behavior: NewBehaviorTable(pop.Size()),
		Cascades: make([]Row, 0, trials),
	}

	for t := 0; t < trials; t++ {
		if t%1000 == 0 && ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "fitness assessment canceled")
		}

		r := Simulate(nw, pop, gen, psi, rng)
		out.Cascades = append(out.Cascades, Stats(t, pop, r))
		Evaluate(pop, r, out.Behavior)
	}

	return out, nil
}

// MeanAccuracy averages Accuracy over all individuals.
func (f *Fitness) MeanAccuracy() float64 { return MeanAccuracy(f.Behavior) }
