// Package sim runs replicates of the network-breaking cascade model and
// stores what they produce.
package sim

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/cascade-models/netbreak/cascade"
	"github.com/cascade-models/netbreak/model"
	"github.com/cascade-models/netbreak/network"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const (
	thresholdLower = 0
	thresholdUpper = 1

	cancelCheckInterval = 1000
)

// Result holds everything one replicate produces.
type Result struct {
	Parameters     model.Parameters    `bson:"parameters" json:"parameters" yaml:"parameters"`
	Replicate      int                 `bson:"replicate" json:"replicate" yaml:"replicate"`
	Seed           int64               `bson:"seed" json:"seed" yaml:"seed"`
	InitialNetwork *network.Network    `bson:"-" json:"-" yaml:"-"`
	FinalNetwork   *network.Network    `bson:"-" json:"-" yaml:"-"`
	Population     *cascade.Population `bson:"-" json:"-" yaml:"-"`
	Cascades       []cascade.Row       `bson:"cascades" json:"cascades" yaml:"cascades"`
	Behavior       []cascade.Behavior  `bson:"behavior" json:"behavior" yaml:"behavior"`
	Fitness        *cascade.Fitness    `bson:"fitness" json:"fitness" yaml:"fitness"`
	InitialSummary network.Summary     `bson:"initial_summary" json:"initial_summary" yaml:"initial_summary"`
	FinalSummary   network.Summary     `bson:"final_summary" json:"final_summary" yaml:"final_summary"`
	TiesBroken     int                 `bson:"ties_broken" json:"ties_broken" yaml:"ties_broken"`
	TiesFormed     int                 `bson:"ties_formed" json:"ties_formed" yaml:"ties_formed"`
	Duration       time.Duration       `bson:"duration" json:"duration" yaml:"duration"`
}

// NewRand returns the generator a replicate draws all of its randomness
// from.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// RunReplicate simulates one replicate of the model: it seeds thresholds,
// types and a network from the replicate's seed, lets the network adjust
// over params.Timesteps cascades and finally assesses the fitness of the
// resulting network.
func RunReplicate(ctx context.Context, params model.Parameters, replicate int) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid parameters")
	}
	if replicate < 0 {
		return nil, errors.Errorf("replicate id %d must not be negative", replicate)
	}

	start := time.Now()
	seed := params.Seed(replicate)
	rng := NewRand(seed)

	pop, err := cascade.NewPopulation(params.N, thresholdLower, thresholdUpper, rng)
	if err != nil {
		return nil, errors.Wrap(err, "problem seeding population")
	}
	nw, err := network.Seed(params.N, params.K, params.NetworkType, rng)
	if err != nil {
		return nil, errors.Wrap(err, "problem seeding network")
	}
	gen, err := cascade.NewGenerator(params.Gamma, rng)
	if err != nil {
		return nil, errors.Wrap(err, "problem constructing stimulus generator")
	}

	res := &Result{
		Parameters:     params,
		Replicate:      replicate,
		Seed:           seed,
		InitialNetwork: nw.Clone(),
		Population:     pop,
		Behavior:       cascade.NewBehaviorTable(params.N),
		InitialSummary: network.Summarize(nw),
	}

	for t := 0; t < params.Timesteps; t++ {
		if t%cancelCheckInterval == 0 && ctx.Err() != nil {
			return nil, errors.Wrapf(ctx.Err(), "replicate %d canceled at step %d", replicate, t)
		}

		r := cascade.Simulate(nw, pop, gen, params.Psi, rng)
		if params.Record(t) {
			res.Cascades = append(res.Cascades, cascade.Stats(t, pop, r))
		}
		correct := cascade.Evaluate(pop, r, res.Behavior)

		change := params.TieRule.Apply(nw, r.Active, correct, params.P, rng)
		if change.Broken != nil {
			res.TiesBroken++
		}
		if change.Formed != nil {
			res.TiesFormed++
		}
	}

	res.FinalNetwork = nw
	res.FinalSummary = network.Summarize(nw)

	res.Fitness, err = cascade.AssessFitness(ctx, nw, pop, gen, params.Psi, params.FitnessTrials, rng)
	if err != nil {
		return nil, errors.Wrapf(err, "problem assessing fitness of replicate %d", replicate)
	}
	res.Duration = time.Since(start)

	typeA, typeB := pop.Counts()
	grip.Info(message.Fields{
		"message":       "replicate complete",
		"gamma":         params.Gamma,
		"replicate":     replicate,
		"seed":          seed,
		"type_a":        typeA,
		"type_b":        typeB,
		"initial_ties":  res.InitialSummary.Ties,
		"final_ties":    res.FinalSummary.Ties,
		"ties_broken":   res.TiesBroken,
		"ties_formed":   res.TiesFormed,
		"mean_accuracy": res.Fitness.MeanAccuracy(),
		"duration_secs": res.Duration.Seconds(),
	})

	return res, nil
}
