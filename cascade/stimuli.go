package cascade

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Stimuli holds the values of sources A and B in one time step.
type Stimuli [2]float64

// Generator draws stimuli from a bivariate standard normal whose two
// components have correlation gamma.
type Generator struct {
	gamma   float64
	joint   *distmv.Normal
	single  distuv.Normal
	perfect bool
}

// NewGenerator returns a stimulus generator for correlation gamma in
// [-1, 1]. Perfectly (anti-)correlated sources have a singular covariance
// and are drawn from a single normal.
func NewGenerator(gamma float64, rng *rand.Rand) (*Generator, error) {
	if gamma < -1 || gamma > 1 || math.IsNaN(gamma) {
		return nil, errors.Errorf("correlation %g must be in [-1, 1]", gamma)
	}

	g := &Generator{gamma: gamma}
	if math.Abs(gamma) == 1 {
		g.perfect = true
		g.single = distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
		return g, nil
	}

	sigma := mat.NewSymDense(2, []float64{1, gamma, gamma, 1})
	joint, ok := distmv.NewNormal([]float64{0, 0}, sigma, rng)
	if !ok {
		return nil, errors.Errorf("covariance for correlation %g is not positive definite", gamma)
	}
	g.joint = joint
	return g, nil
}

// Draw returns the stimuli for one time step.
func (g *Generator) Draw() Stimuli {
	if g.perfect {
		z := g.single.Rand()
		return Stimuli{z, g.gamma * z}
	}

	x := g.joint.Rand(nil)
	return Stimuli{x[0], x[1]}
}

// For returns the value of the source an individual of type s attends to.
func (s Stimuli) For(src Source) float64 { return s[src] }
