package units

import (
	"context"
	"fmt"

	"github.com/cascade-models/netbreak"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/dependency"
	"github.com/mongodb/amboy/job"
	"github.com/mongodb/amboy/registry"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
)

const (
	amboyStatsCollectorJobName = "amboy-stats-collector"
)

func init() {
	registry.AddJobType(amboyStatsCollectorJobName,
		func() amboy.Job { return makeAmboyStatsCollector() })
}

type amboyStatsCollector struct {
	Sweep    string `bson:"sweep" json:"sweep" yaml:"sweep"`
	Total    int    `bson:"total" json:"total" yaml:"total"`
	job.Base `bson:"job_base" json:"job_base" yaml:"job_base"`
	env      netbreak.Environment
}

// NewAmboyStatsCollector reports the status of the queue registered in the
// environment, along with the progress of the sweep that owns total of
// its jobs.
func NewAmboyStatsCollector(env netbreak.Environment, sweep string, total int, id string) amboy.Job {
	j := makeAmboyStatsCollector()
	j.Sweep = sweep
	j.Total = total
	j.env = env
	j.SetID(fmt.Sprintf("%s-%s-%s", amboyStatsCollectorJobName, sweep, id))
	return j
}

func makeAmboyStatsCollector() *amboyStatsCollector {
	j := &amboyStatsCollector{
		env: netbreak.GetEnvironment(),
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    amboyStatsCollectorJobName,
				Version: 0,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

func (j *amboyStatsCollector) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = netbreak.GetEnvironment()
	}

	q := j.env.GetQueue()
	if q == nil || !q.Info().Started {
		return
	}

	grip.Info(message.Fields{
		"message":    "amboy queue stats",
		"sweep":      j.Sweep,
		"replicates": j.Total,
		"stats":      q.Stats(ctx),
	})
}
