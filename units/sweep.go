package units

import (
	"context"
	"time"

	"github.com/cascade-models/netbreak"
	"github.com/cascade-models/netbreak/sim"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/amboy"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const tsFormat = "2006-01-02.15-04-05"

// Sweep runs every replicate of a sweep configuration, at the selected
// correlations, on the environment's queue.
type Sweep struct {
	ID            string
	Config        *sim.SweepConfig
	Gammas        []float64
	WaitInterval  time.Duration
	StatsInterval time.Duration
}

// NewSweep validates the configuration and selects the correlations to
// run from the optional index.
func NewSweep(conf *sim.SweepConfig, index *int) (*Sweep, error) {
	if conf == nil {
		return nil, errors.New("sweep configuration is nil")
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid sweep configuration")
	}

	gammas, err := sim.ResolveGammas(conf.Gammas, index)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Sweep{
		ID:            utility.RandomString(),
		Config:        conf,
		Gammas:        gammas,
		WaitInterval:  time.Second,
		StatsInterval: time.Minute,
	}, nil
}

// Jobs returns one replicate job per selected correlation and replicate
// id.
func (s *Sweep) Jobs(env netbreak.Environment) []amboy.Job {
	out := make([]amboy.Job, 0, len(s.Gammas)*s.Config.Replicates)
	for _, gamma := range s.Gammas {
		params := s.Config.Parameters.WithGamma(gamma)
		for rep := 0; rep < s.Config.Replicates; rep++ {
			out = append(out, NewReplicateJob(env, s.ID, params, rep))
		}
	}
	return out
}

// Run enqueues every replicate, waits for the queue to drain and returns
// the aggregated errors of the replicates that failed.
func (s *Sweep) Run(ctx context.Context, env netbreak.Environment) error {
	if env == nil {
		return errors.New("cannot run a sweep with a nil environment")
	}
	q := env.GetQueue()
	if q == nil {
		return errors.New("environment has no queue")
	}

	jobs := s.Jobs(env)
	if conf := env.GetConf(); conf != nil && len(jobs) > conf.QueueCapacity {
		return errors.Errorf("sweep of %d replicates exceeds the queue capacity of %d", len(jobs), conf.QueueCapacity)
	}

	catcher := grip.NewBasicCatcher()
	for _, j := range jobs {
		catcher.Wrapf(q.Put(ctx, j), "enqueuing %s", j.ID())
	}
	if catcher.HasErrors() {
		return catcher.Resolve()
	}

	start := time.Now()
	grip.Info(message.Fields{
		"message":    "started sweep",
		"sweep":      s.ID,
		"gammas":     s.Gammas,
		"replicates": s.Config.Replicates,
		"jobs":       len(jobs),
	})

	statsCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.StatsInterval > 0 {
		opts := amboy.QueueOperationConfig{ContinueOnError: true}
		amboy.IntervalQueueOperation(statsCtx, q, s.StatsInterval, start.Add(s.StatsInterval), opts, func(ctx context.Context, q amboy.Queue) error {
			return q.Put(ctx, NewAmboyStatsCollector(env, s.ID, len(jobs), time.Now().Format(tsFormat)))
		})
	}

	amboy.WaitInterval(ctx, q, s.WaitInterval)
	cancel()
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "sweep %s did not complete", s.ID)
	}

	failed := 0
	for _, j := range jobs {
		if stored, ok := q.Get(ctx, j.ID()); ok {
			j = stored
		}
		if err := j.Error(); err != nil {
			failed++
			catcher.Wrapf(err, "job %s", j.ID())
		}
	}

	grip.Info(message.Fields{
		"message":       "completed sweep",
		"sweep":         s.ID,
		"jobs":          len(jobs),
		"failed":        failed,
		"duration_secs": time.Since(start).Seconds(),
	})

	return catcher.Resolve()
}
