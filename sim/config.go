package sim

import (
	"math"

	"github.com/cascade-models/netbreak/model"
	"github.com/cascade-models/netbreak/util"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
)

const (
	defaultReplicates = 100
	gammaStep         = 0.1
)

// SweepConfig describes a parameter sweep: one set of model parameters
// run at every correlation in Gammas, Replicates times each.
type SweepConfig struct {
	Parameters model.Parameters `bson:"parameters" json:"parameters" yaml:"parameters"`
	Gammas     []float64        `bson:"gammas" json:"gammas" yaml:"gammas"`
	Replicates int              `bson:"replicates" json:"replicates" yaml:"replicates"`
}

// DefaultGammas returns the correlations from -1 to 1 in steps of 0.1.
func DefaultGammas() []float64 {
	n := int(math.Round(2/gammaStep)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Round((-1+float64(i)*gammaStep)*10) / 10
	}
	return out
}

// DefaultSweepConfig returns the sweep run when no configuration file is
// given.
func DefaultSweepConfig() *SweepConfig {
	return &SweepConfig{
		Parameters: model.Parameters{
			N:         200,
			K:         5,
			Psi:       0.1,
			P:         0.5,
			Timesteps: 1000000,

			StatsWindow:   model.DefaultStatsWindow,
			FitnessTrials: model.DefaultFitnessTrials,
		},
		Gammas:     DefaultGammas(),
		Replicates: defaultReplicates,
	}
}

// LoadSweepConfig reads a sweep configuration from a YAML or JSON file.
// Fields the file omits keep their default values.
func LoadSweepConfig(path string) (*SweepConfig, error) {
	conf := DefaultSweepConfig()
	if err := util.ReadFileYAML(path, conf); err != nil {
		return nil, errors.Wrap(err, "problem reading sweep configuration")
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid sweep configuration in %s", path)
	}
	return conf, nil
}

// Validate checks the sweep and the parameters of every combination it
// will run.
func (c *SweepConfig) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(len(c.Gammas) == 0, "must specify at least one gamma")
	catcher.ErrorfWhen(c.Replicates < 1, "replicate count %d must be positive", c.Replicates)

	catcher.Wrap(c.Parameters.Validate(), "invalid model parameters")

	seen := map[float64]bool{}
	for _, g := range c.Gammas {
		catcher.ErrorfWhen(g < -1 || g > 1, "gamma %g must be in [-1, 1]", g)
		catcher.ErrorfWhen(seen[g], "duplicate gamma %g", g)
		seen[g] = true
	}

	return catcher.Resolve()
}

// ResolveGammas selects the correlations a run covers. Without an index
// all of them run; otherwise only the one at the index does, with
// negative indices counting from the end so that -1 is the last.
func ResolveGammas(gammas []float64, index *int) ([]float64, error) {
	if len(gammas) == 0 {
		return nil, errors.New("no gammas to select from")
	}
	if index == nil {
		out := make([]float64, len(gammas))
		copy(out, gammas)
		return out, nil
	}

	idx, ok := util.NormalizeIndex(*index, len(gammas))
	if !ok {
		return nil, errors.Errorf("gamma index %d is out of range for %d gammas", *index, len(gammas))
	}

	return []float64{gammas[idx]}, nil
}
