package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cascade-models/netbreak/network"
	"github.com/mongodb/grip"
)

const (
	DefaultStatsWindow   = 5000
	DefaultFitnessTrials = 10000
	seedMultiplier       = 323
)

// Parameters describe one parameter combination of the network-breaking
// model.
type Parameters struct {
	N             int             `bson:"n" json:"n" yaml:"n"`
	K             int             `bson:"k" json:"k" yaml:"k"`
	Gamma         float64         `bson:"gamma" json:"gamma" yaml:"gamma"`
	Psi           float64         `bson:"psi" json:"psi" yaml:"psi"`
	P             float64         `bson:"p" json:"p" yaml:"p"`
	Timesteps     int             `bson:"timesteps" json:"timesteps" yaml:"timesteps"`
	NetworkType   network.Type    `bson:"network_type" json:"network_type" yaml:"network_type"`
	TieRule       network.TieRule `bson:"tie_rule" json:"tie_rule" yaml:"tie_rule"`
	StatsWindow   int             `bson:"stats_window" json:"stats_window" yaml:"stats_window"`
	FitnessTrials int             `bson:"fitness_trials" json:"fitness_trials" yaml:"fitness_trials"`
}

// Validate checks every parameter and fills in the network type and tie
// rule when they are unset. A zero stats window or zero fitness trials
// are kept as given.
func (p *Parameters) Validate() error {
	if p.NetworkType == "" {
		p.NetworkType = network.Random
	}
	if p.TieRule == "" {
		p.TieRule = network.AdjustTies
	}

	catcher := grip.NewBasicCatcher()
	catcher.ErrorfWhen(p.N < 2, "population size %d must be at least 2", p.N)
	catcher.ErrorfWhen(p.K < 1 || p.K >= p.N, "mean degree %d must be in [1, n)", p.K)
	catcher.ErrorfWhen(p.Gamma < -1 || p.Gamma > 1, "gamma %g must be in [-1, 1]", p.Gamma)
	catcher.ErrorfWhen(p.Psi <= 0 || p.Psi > 1, "psi %g must be in (0, 1]", p.Psi)
	catcher.ErrorfWhen(p.P < 0 || p.P > 1, "tie probability %g must be in [0, 1]", p.P)
	catcher.ErrorfWhen(p.Timesteps < 1, "timesteps %d must be positive", p.Timesteps)
	catcher.ErrorfWhen(p.StatsWindow < 0, "stats window %d must not be negative (0 records no cascades)", p.StatsWindow)
	catcher.ErrorfWhen(p.FitnessTrials < 0, "fitness trials %d must not be negative (0 skips fitness)", p.FitnessTrials)
	catcher.Add(p.NetworkType.Validate())
	catcher.Add(p.TieRule.Validate())

	return catcher.Resolve()
}

// WithGamma returns a copy of the parameters with a different correlation.
func (p Parameters) WithGamma(gamma float64) Parameters {
	p.Gamma = gamma
	return p
}

// Seed returns the random seed of a replicate, int((replicate+1+gamma)×323),
// so that every (gamma, replicate) pair is reproducible.
func (p Parameters) Seed(replicate int) int64 {
	return int64((float64(replicate) + 1 + p.Gamma) * seedMultiplier)
}

// Record reports whether cascade statistics of step t are kept: only the
// first and last StatsWindow steps are.
func (p Parameters) Record(t int) bool {
	return t < p.StatsWindow || t >= p.Timesteps-p.StatsWindow
}

// GammaLabel renders a correlation the way output directories name it,
// always with a decimal point ("gamma-1.0", "gamma0.5").
func GammaLabel(gamma float64) string {
	s := strconv.FormatFloat(gamma, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return "gamma" + s
}

// ReplicateLabel zero pads replicate ids to two digits.
func ReplicateLabel(replicate int) string {
	return fmt.Sprintf("rep%02d", replicate)
}
