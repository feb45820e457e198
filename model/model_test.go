package model

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/cascade-models/netbreak"
	"github.com/cascade-models/netbreak/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDBName = "netbreak_test_model"

func validParameters() Parameters {
	return Parameters{
		N:         20,
		K:         3,
		Gamma:     0.5,
		Psi:       0.1,
		P:         0.5,
		Timesteps: 100,
	}
}

func TestParametersValidate(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		p := validParameters()
		require.NoError(t, p.Validate())
		assert.Equal(t, network.Random, p.NetworkType)
		assert.Equal(t, network.AdjustTies, p.TieRule)
		assert.Zero(t, p.StatsWindow)
		assert.Zero(t, p.FitnessTrials)
	})
	t.Run("ExplicitWindowAndTrials", func(t *testing.T) {
		p := validParameters()
		p.StatsWindow = 7
		p.FitnessTrials = 11
		require.NoError(t, p.Validate())
		assert.Equal(t, 7, p.StatsWindow)
		assert.Equal(t, 11, p.FitnessTrials)
	})
	for name, mutate := range map[string]func(p *Parameters){
		"SmallPopulation": func(p *Parameters) { p.N = 1 },
		"ZeroDegree":      func(p *Parameters) { p.K = 0 },
		"DegreeTooLarge":  func(p *Parameters) { p.K = p.N },
		"GammaTooLarge":   func(p *Parameters) { p.Gamma = 1.5 },
		"GammaTooSmall":   func(p *Parameters) { p.Gamma = -1.01 },
		"ZeroPsi":         func(p *Parameters) { p.Psi = 0 },
		"PsiTooLarge":     func(p *Parameters) { p.Psi = 1.1 },
		"NegativeP":       func(p *Parameters) { p.P = -0.1 },
		"NoTimesteps":     func(p *Parameters) { p.Timesteps = 0 },
		"NegativeWindow":  func(p *Parameters) { p.StatsWindow = -1 },
		"NegativeTrials":  func(p *Parameters) { p.FitnessTrials = -1 },
		"UnknownNetwork":  func(p *Parameters) { p.NetworkType = "ring" },
		"UnknownTieRule":  func(p *Parameters) { p.TieRule = "rewire" },
	} {
		t.Run(name, func(t *testing.T) {
			p := validParameters()
			mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestParametersSeed(t *testing.T) {
	p := validParameters()
	assert.Equal(t, int64(484), p.Seed(0))
	assert.Equal(t, int64(807), p.Seed(1))

	p.Gamma = -1
	assert.Equal(t, int64(0), p.Seed(0))
	assert.Equal(t, int64(3230), p.Seed(10))

	assert.Equal(t, 0.25, p.WithGamma(0.25).Gamma)
	assert.Equal(t, -1.0, p.Gamma)
}

func TestParametersRecord(t *testing.T) {
	p := validParameters()
	p.StatsWindow = 10
	assert.True(t, p.Record(0))
	assert.True(t, p.Record(9))
	assert.False(t, p.Record(10))
	assert.False(t, p.Record(89))
	assert.True(t, p.Record(90))
	assert.True(t, p.Record(99))

	p.StatsWindow = 0
	assert.False(t, p.Record(0))
	assert.False(t, p.Record(99))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "gamma-1.0", GammaLabel(-1))
	assert.Equal(t, "gamma0.0", GammaLabel(0))
	assert.Equal(t, "gamma0.5", GammaLabel(0.5))
	assert.Equal(t, "gamma-0.25", GammaLabel(-0.25))
	assert.Equal(t, "rep00", ReplicateLabel(0))
	assert.Equal(t, "rep07", ReplicateLabel(7))
	assert.Equal(t, "rep123", ReplicateLabel(123))

	assert.Equal(t, "cascade_data/gamma0.5/cascade_rep03.ftdc", OutputKey(CascadeData, 0.5, "cascade", 3, FileFTDC))
	assert.Equal(t, "social_network_data/gamma-1.0/sn_final_rep00.json", OutputKey(SocialNetworkData, -1, "sn_final", 0, FileJSON))

	assert.NoError(t, FileJSON.Validate())
	assert.NoError(t, FileFTDC.Validate())
	assert.Error(t, FileDataFormat("npy").Validate())
}

func TestPailType(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.NoError(t, PailLocal.Validate())
	assert.NoError(t, PailS3.Validate())
	assert.NoError(t, PailGridFS.Validate())
	assert.Error(t, PailType("ftp").Validate())

	t.Run("Unsupported", func(t *testing.T) {
		b, err := PailType("ftp").Create(ctx, nil, t.TempDir(), "")
		assert.Error(t, err)
		assert.Nil(t, b)
	})
	t.Run("GridFSNeedsDatabase", func(t *testing.T) {
		b, err := PailGridFS.Create(ctx, nil, "outputs", "")
		assert.Error(t, err)
		assert.Nil(t, b)
	})
	t.Run("S3Options", func(t *testing.T) {
		opts := s3Options("netbreak-outputs", "sweep-1")
		assert.Equal(t, "netbreak-outputs", opts.Name)
		assert.Equal(t, "sweep-1", opts.Prefix)
		assert.Equal(t, defaultS3Region, opts.Region)
		require.NotNil(t, opts.MaxRetries)
		assert.Equal(t, defaultS3Retries, *opts.MaxRetries)
	})
	t.Run("LocalCreatesDirectory", func(t *testing.T) {
		dir := t.TempDir() + "/nested/out"
		b, err := PailLocal.Create(ctx, nil, dir, "")
		require.NoError(t, err)
		require.NotNil(t, b)

		require.NoError(t, b.Put(ctx, OutputKey(ThresholdData, 0.5, "thresh", 0, FileJSON), bytes.NewBufferString("[0.1]")))
		r, err := b.Get(ctx, OutputKey(ThresholdData, 0.5, "thresh", 0, FileJSON))
		require.NoError(t, err)
		defer r.Close()
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "[0.1]", string(data))
	})
	t.Run("OutputBucket", func(t *testing.T) {
		_, err := OutputBucket(ctx, nil)
		assert.Error(t, err)

		env, err := netbreak.NewEnvironment(ctx, "test", &netbreak.Configuration{OutputPath: t.TempDir(), NumWorkers: 1})
		require.NoError(t, err)
		defer func() { assert.NoError(t, env.Close(ctx)) }()
		b, err := OutputBucket(ctx, env)
		require.NoError(t, err)
		assert.NotNil(t, b)
	})
}

func TestReplicateInfoID(t *testing.T) {
	info := ReplicateInfo{Sweep: "sweep", Gamma: 0.5, Replicate: 1}
	assert.Equal(t, info.ID(), info.ID())
	assert.Len(t, info.ID(), 40)

	other := info
	other.Replicate = 2
	assert.NotEqual(t, info.ID(), other.ID())
	other = info
	other.Gamma = -0.5
	assert.NotEqual(t, info.ID(), other.ID())

	record := CreateReplicateRecord(info, validParameters())
	assert.Equal(t, info.ID(), record.ID)
	assert.Equal(t, int64(807), record.Seed)
	assert.False(t, record.IsNil())
	assert.True(t, (&ReplicateRecord{}).IsNil())
}

func TestReplicateRecordRequiresDatabase(t *testing.T) {
	ctx := context.Background()
	record := CreateReplicateRecord(ReplicateInfo{Gamma: 0.5}, validParameters())
	assert.Error(t, record.Save(ctx))
	assert.Error(t, record.Find(ctx))
	assert.Error(t, record.Remove(ctx))
	assert.Error(t, (&ReplicateRecord{}).Save(ctx))

	_, err := FindReplicateRecords(ctx, nil, "sweep", 0.5)
	assert.Error(t, err)
}

func TestReplicateRecordDatabase(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env, err := netbreak.NewEnvironment(ctx, "test", &netbreak.Configuration{
		OutputPath:         t.TempDir(),
		NumWorkers:         1,
		MongoDBURI:         "mongodb://localhost:27017",
		DatabaseName:       testDBName,
		MongoDBDialTimeout: time.Second,
	})
	if err != nil {
		t.Skip("database is not available:", err)
	}
	defer func() {
		assert.NoError(t, env.GetDB().Drop(ctx))
		assert.NoError(t, env.Close(ctx))
	}()

	for i := 0; i < 3; i++ {
		record := CreateReplicateRecord(ReplicateInfo{Sweep: "s1", Gamma: 0.5, Replicate: 2 - i}, validParameters())
		record.Setup(env)
		record.CompletedAt = time.Now()
		require.NoError(t, record.Save(ctx))
		// upserting twice keeps one document
		require.NoError(t, record.Save(ctx))
	}

	found := &ReplicateRecord{Info: ReplicateInfo{Sweep: "s1", Gamma: 0.5, Replicate: 1}}
	found.Setup(env)
	require.NoError(t, found.Find(ctx))
	assert.Equal(t, 1, found.Info.Replicate)
	assert.Equal(t, 20, found.Parameters.N)

	records, err := FindReplicateRecords(ctx, env, "s1", 0.5)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, i, r.Info.Replicate)
	}

	require.NoError(t, found.Remove(ctx))
	assert.Error(t, found.Find(ctx))
}
