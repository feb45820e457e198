package units

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cascade-models/netbreak"
	"github.com/cascade-models/netbreak/model"
	"github.com/cascade-models/netbreak/sim"
	"github.com/cascade-models/netbreak/util"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/registry"
	"github.com/mongodb/grip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParameters() model.Parameters {
	return model.Parameters{
		N:             12,
		K:             3,
		Psi:           0.25,
		P:             0.5,
		Timesteps:     20,
		StatsWindow:   5,
		FitnessTrials: 10,
	}
}

func testEnv(ctx context.Context, t *testing.T, capacity int) netbreak.Environment {
	env, err := netbreak.NewEnvironment(ctx, "test", &netbreak.Configuration{
		OutputPath:    t.TempDir(),
		NumWorkers:    2,
		QueueCapacity: capacity,
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, env.Close(context.Background())) })
	return env
}

func outputExists(env netbreak.Environment, gamma float64, replicate int) bool {
	key := model.OutputKey(model.BehaviorData, gamma, "behavior", replicate, model.FileJSON)
	return util.FileExists(filepath.Join(env.GetConf().OutputPath, filepath.FromSlash(key)))
}

func TestAllRegisteredUnitsAreRemoteSafe(t *testing.T) {
	assert := assert.New(t)

	for id := range registry.JobTypeNames() {
		grip.Infoln("testing job is remote ready:", id)
		factory, err := registry.GetJobFactory(id)
		assert.NoError(err)
		assert.NotNil(factory)
		job := factory()

		assert.NotNil(job)

		assert.Equal(id, job.Type().Name)

		for _, f := range []amboy.Format{amboy.JSON} {
			assert.NotPanics(func() {
				dbjob, err := registry.MakeJobInterchange(job, f)

				assert.NoError(err)
				assert.NotNil(dbjob)
				assert.NotNil(dbjob.Dependency)
				assert.Equal(id, dbjob.Type)
			}, id)
		}
	}
}

func TestReplicateJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("WritesOutputs", func(t *testing.T) {
		env := testEnv(ctx, t, 0)
		params := testParameters().WithGamma(0.5)
		j := NewReplicateJob(env, "sweep", params, 2)
		assert.Equal(t, "netbreak-replicate-sweep-gamma0.5-rep02", j.ID())

		j.Run(ctx)
		require.NoError(t, j.Error())
		assert.True(t, j.Status().Completed)
		assert.Len(t, j.(*replicateJob).Outputs, 10)
		assert.True(t, outputExists(env, 0.5, 2))
	})
	t.Run("InvalidParameters", func(t *testing.T) {
		env := testEnv(ctx, t, 0)
		params := testParameters()
		params.K = params.N
		j := NewReplicateJob(env, "sweep", params, 0)
		j.Run(ctx)
		assert.Error(t, j.Error())
		assert.True(t, j.Status().Completed)
	})
	t.Run("UnconfiguredEnvironment", func(t *testing.T) {
		j := NewReplicateJob(nil, "sweep", testParameters(), 0)
		j.Run(ctx)
		assert.Error(t, j.Error())
	})
}

func TestNewSweep(t *testing.T) {
	conf := &sim.SweepConfig{
		Parameters: testParameters(),
		Gammas:     []float64{-1, 0, 1},
		Replicates: 2,
	}
	index := func(i int) *int { return &i }

	s, err := NewSweep(conf, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, []float64{-1, 0, 1}, s.Gammas)
	assert.Len(t, s.Jobs(nil), 6)

	s, err = NewSweep(conf, index(-1))
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, s.Gammas)
	jobs := s.Jobs(nil)
	require.Len(t, jobs, 2)
	assert.Equal(t, 1.0, jobs[1].(*replicateJob).Parameters.Gamma)
	assert.Equal(t, 1, jobs[1].(*replicateJob).Replicate)

	other, err := NewSweep(conf, nil)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID)

	_, err = NewSweep(conf, index(3))
	assert.Error(t, err)
	_, err = NewSweep(nil, nil)
	assert.Error(t, err)
	_, err = NewSweep(&sim.SweepConfig{Parameters: testParameters(), Replicates: 1}, nil)
	assert.Error(t, err)
}

func TestSweepRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conf := &sim.SweepConfig{
		Parameters: testParameters(),
		Gammas:     []float64{-0.5, 0.5},
		Replicates: 3,
	}
	last := -1

	t.Run("RunsSelectedGamma", func(t *testing.T) {
		env := testEnv(ctx, t, 0)
		s, err := NewSweep(conf, &last)
		require.NoError(t, err)
		s.WaitInterval = 10 * time.Millisecond
		s.StatsInterval = 20 * time.Millisecond

		require.NoError(t, s.Run(ctx, env))
		for rep := 0; rep < conf.Replicates; rep++ {
			assert.True(t, outputExists(env, 0.5, rep))
			assert.False(t, outputExists(env, -0.5, rep))
		}

		summaries, err := func() ([]sim.ReplicateSummary, error) {
			bucket, err := model.OutputBucket(ctx, env)
			if err != nil {
				return nil, err
			}
			return sim.Summarize(ctx, bucket, 0.5)
		}()
		require.NoError(t, err)
		assert.Len(t, summaries, conf.Replicates)
	})
	t.Run("ExceedsCapacity", func(t *testing.T) {
		env := testEnv(ctx, t, 2)
		s, err := NewSweep(conf, nil)
		require.NoError(t, err)
		assert.Error(t, s.Run(ctx, env))
	})
	t.Run("NilEnvironment", func(t *testing.T) {
		s, err := NewSweep(conf, nil)
		require.NoError(t, err)
		assert.Error(t, s.Run(ctx, nil))
	})
}

func TestAmboyStatsCollector(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env := testEnv(ctx, t, 0)
	j := NewAmboyStatsCollector(env, "sweep", 4, "now")
	assert.Equal(t, "amboy-stats-collector-sweep-now", j.ID())
	j.Run(ctx)
	assert.NoError(t, j.Error())
	assert.True(t, j.Status().Completed)

	j = NewAmboyStatsCollector(nil, "sweep", 4, "later")
	assert.NotPanics(t, func() { j.Run(ctx) })
}
