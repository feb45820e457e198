package units

import (
	"context"
	"fmt"
	"time"

	"github.com/cascade-models/netbreak"
	"github.com/cascade-models/netbreak/model"
	"github.com/cascade-models/netbreak/sim"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/dependency"
	"github.com/mongodb/amboy/job"
	"github.com/mongodb/amboy/registry"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const (
	replicateJobName = "netbreak-replicate"
)

func init() {
	registry.AddJobType(replicateJobName, func() amboy.Job {
		return replicateJobFactory()
	})
}

type replicateJob struct {
	Sweep      string           `bson:"sweep" json:"sweep" yaml:"sweep"`
	Parameters model.Parameters `bson:"parameters" json:"parameters" yaml:"parameters"`
	Replicate  int              `bson:"replicate" json:"replicate" yaml:"replicate"`
	Outputs    []string         `bson:"outputs" json:"outputs" yaml:"outputs"`
	*job.Base  `bson:"metadata" json:"metadata" yaml:"metadata"`
	env        netbreak.Environment
}

func replicateJobFactory() *replicateJob {
	j := &replicateJob{
		Base: &job.Base{
			JobType: amboy.JobType{
				Name:    replicateJobName,
				Version: 1,
			},
		},
		env: netbreak.GetEnvironment(),
	}
	j.SetDependency(dependency.NewAlways())

	return j
}

// NewReplicateJob returns a job that runs one replicate of the model at
// params, writes its outputs to the environment's output bucket and, when
// the environment has a database, indexes the replicate there.
func NewReplicateJob(env netbreak.Environment, sweep string, params model.Parameters, replicate int) amboy.Job {
	j := replicateJobFactory()
	j.SetID(fmt.Sprintf("%s-%s-%s-%s", j.Type().Name, sweep, model.GammaLabel(params.Gamma), model.ReplicateLabel(replicate)))

	j.Sweep = sweep
	j.Parameters = params
	j.Replicate = replicate
	j.env = env
	return j
}

func (j *replicateJob) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = netbreak.GetEnvironment()
	}

	res, err := sim.RunReplicate(ctx, j.Parameters, j.Replicate)
	if err != nil {
		j.AddError(errors.Wrapf(err, "problem running replicate %d at %s", j.Replicate, model.GammaLabel(j.Parameters.Gamma)))
		return
	}

	bucket, err := model.OutputBucket(ctx, j.env)
	if err != nil {
		j.AddError(errors.Wrap(err, "problem resolving output bucket"))
		return
	}

	j.Outputs, err = sim.Save(ctx, bucket, res)
	if err != nil {
		j.AddError(errors.Wrap(err, "problem saving replicate outputs"))
		return
	}

	if j.env.GetDB() == nil {
		return
	}

	record := res.Record(j.Sweep, j.Outputs)
	record.Setup(j.env)
	record.CompletedAt = time.Now()
	if err = record.Save(ctx); err != nil {
		j.AddError(errors.Wrap(err, "problem indexing replicate"))
		return
	}

	grip.Debug(message.Fields{
		"job_id":    j.ID(),
		"record":    record.ID,
		"gamma":     j.Parameters.Gamma,
		"replicate": j.Replicate,
		"message":   "indexed replicate",
	})
}
