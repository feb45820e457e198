package network

import (
	"math/rand/v2"

	"github.com/pkg/errors"
)

// TieRule selects how the network rewires after each time step.
type TieRule string

const (
	// AdjustTies breaks a misleading tie and, only when one was broken,
	// has a random individual form a replacement tie. The number of ties
	// stays constant.
	AdjustTies TieRule = "adjust"
	// BreakMakeTies breaks a misleading tie and then, independently, lets
	// a random individual form a tie with probability p.
	BreakMakeTies TieRule = "break-make"
)

// Validate returns an error for unknown rules.
func (r TieRule) Validate() error {
	switch r {
	case AdjustTies, BreakMakeTies:
		return nil
	default:
		return errors.Errorf("unknown tie rule '%s'", r)
	}
}

// Tie is a directed tie between two individuals.
type Tie struct {
	From int `bson:"from" json:"from" yaml:"from"`
	To   int `bson:"to" json:"to" yaml:"to"`
}

// Change reports the ties touched by one rewiring step.
type Change struct {
	Broken *Tie `bson:"broken,omitempty" json:"broken,omitempty" yaml:"broken,omitempty"`
	Formed *Tie `bson:"formed,omitempty" json:"formed,omitempty" yaml:"formed,omitempty"`
}

// Apply rewires nw according to the rule. The active and correct slices
// are indexed by individual; p is only consulted by BreakMakeTies.
func (r TieRule) Apply(nw *Network, active, correct []bool, p float64, rng *rand.Rand) Change {
	switch r {
	case BreakMakeTies:
		change := Change{Broken: Break(nw, active, correct, rng)}
		change.Formed = Make(nw, p, rng)
		return change
	default:
		return Adjust(nw, active, correct, rng)
	}
}

// Break picks a random active individual and, if it behaved incorrectly,
// stops it observing one randomly chosen active neighbor. It returns the
// broken tie or nil when nothing changed.
func Break(nw *Network, active, correct []bool, rng *rand.Rand) *Tie {
	actives := indices(active)
	if len(actives) == 0 {
		return nil
	}

	focal := actives[rng.IntN(len(actives))]
	if correct[focal] {
		return nil
	}

	misleading := []int{}
	for _, j := range nw.Neighbors(focal) {
		if active[j] {
			misleading = append(misleading, j)
		}
	}
	if len(misleading) == 0 {
		return nil
	}

	target := misleading[rng.IntN(len(misleading))]
	nw.RemoveTie(focal, target)
	return &Tie{From: focal, To: target}
}

// Make selects a random individual that, with probability p, starts
// observing a random individual it does not observe yet.
func Make(nw *Network, p float64, rng *rand.Rand) *Tie {
	former := rng.IntN(nw.Size())
	if rng.Float64() >= p {
		return nil
	}
	return formTie(nw, former, rng)
}

// Adjust combines Break with a paired tie formation: a replacement tie is
// only formed when a tie was broken.
func Adjust(nw *Network, active, correct []bool, rng *rand.Rand) Change {
	broken := Break(nw, active, correct, rng)
	if broken == nil {
		return Change{}
	}

	return Change{Broken: broken, Formed: formTie(nw, rng.IntN(nw.Size()), rng)}
}

func formTie(nw *Network, former int, rng *rand.Rand) *Tie {
	candidates := nw.NonNeighbors(former)
	if len(candidates) == 0 {
		return nil
	}

	target := candidates[rng.IntN(len(candidates))]
	nw.SetTie(former, target)
	return &Tie{From: former, To: target}
}

func indices(flags []bool) []int {
	out := []int{}
	for i, ok := range flags {
		if ok {
			out = append(out, i)
		}
	}
	return out
}
