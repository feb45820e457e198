package sim

import (
	"context"
	"encoding/json"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/cascade-models/netbreak/cascade"
	"github.com/cascade-models/netbreak/model"
	"github.com/evergreen-ci/pail"
	"github.com/pkg/errors"
)

// ReplicateSummary reports how accurately individuals behaved in one
// stored replicate, during the run and over the fitness trials.
type ReplicateSummary struct {
	Gamma           float64 `bson:"gamma" json:"gamma" yaml:"gamma"`
	Replicate       int     `bson:"replicate" json:"replicate" yaml:"replicate"`
	Individuals     int     `bson:"individuals" json:"individuals" yaml:"individuals"`
	MeanAccuracy    float64 `bson:"mean_accuracy" json:"mean_accuracy" yaml:"mean_accuracy"`
	FitnessAccuracy float64 `bson:"fitness_accuracy" json:"fitness_accuracy" yaml:"fitness_accuracy"`
}

// Summarize reads the behavior outputs stored for gamma and reports the
// mean accuracy of every replicate, ordered by replicate id.
func Summarize(ctx context.Context, bucket pail.Bucket, gamma float64) ([]ReplicateSummary, error) {
	if bucket == nil {
		return nil, errors.New("cannot summarize a nil bucket")
	}

	behavior, err := loadBehavior(ctx, bucket, model.BehaviorData, gamma, "behavior")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	fitness, err := loadBehavior(ctx, bucket, model.FitnessData, gamma, "fitness_behavior")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	out := make([]ReplicateSummary, 0, len(behavior))
	for rep, table := range behavior {
		out = append(out, ReplicateSummary{
			Gamma:           gamma,
			Replicate:       rep,
			Individuals:     len(table),
			MeanAccuracy:    cascade.MeanAccuracy(table),
			FitnessAccuracy: cascade.MeanAccuracy(fitness[rep]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Replicate < out[j].Replicate })

	return out, nil
}

func loadBehavior(ctx context.Context, bucket pail.Bucket, dir model.OutputDir, gamma float64, name string) (map[int][]cascade.Behavior, error) {
	prefix := string(dir) + "/" + model.GammaLabel(gamma) + "/"
	iter, err := bucket.List(ctx, prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", prefix)
	}

	out := map[int][]cascade.Behavior{}
	for iter.Next(ctx) {
		item := iter.Item()
		rep, ok := parseReplicate(item.Name(), name, model.FileJSON)
		if !ok {
			continue
		}

		table, err := readBehavior(ctx, item)
		if err != nil {
			return nil, errors.Wrapf(err, "reading '%s'", item.Name())
		}
		out[rep] = table
	}
	if err = iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterating %s", prefix)
	}

	return out, nil
}

func readBehavior(ctx context.Context, item pail.BucketItem) ([]cascade.Behavior, error) {
	r, err := item.Get(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	table := []cascade.Behavior{}
	if err = json.Unmarshal(data, &table); err != nil {
		return nil, errors.Wrap(err, "problem parsing behavior data")
	}
	return table, nil
}

// parseReplicate extracts the replicate id from keys of the form
// .../<name>_rep<NN>.<format>.
func parseReplicate(key, name string, format model.FileDataFormat) (int, bool) {
	base := path.Base(strings.ReplaceAll(key, "\\", "/"))
	base, ok := strings.CutSuffix(base, "."+string(format))
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutPrefix(base, name+"_rep")
	if !ok {
		return 0, false
	}
	rep, err := strconv.Atoi(digits)
	if err != nil || rep < 0 {
		return 0, false
	}
	return rep, true
}
