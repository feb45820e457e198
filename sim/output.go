package sim

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/cascade-models/netbreak/cascade"
	"github.com/cascade-models/netbreak/model"
	"github.com/evergreen-ci/pail"
	"github.com/mongodb/ftdc"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const pointsPerChunk = 10 * 1000

// Output is one file a replicate writes to the output bucket.
type Output struct {
	Key  string
	Data []byte
}

type outputFile struct {
	dir    model.OutputDir
	name   string
	format model.FileDataFormat
	data   func(*Result) interface{}
}

func outputFiles() []outputFile {
	return []outputFile{
		{dir: model.CascadeData, name: "cascade", format: model.FileJSON, data: func(r *Result) interface{} { return r.Cascades }},
		{dir: model.CascadeData, name: "cascade", format: model.FileFTDC, data: func(r *Result) interface{} { return r.Cascades }},
		{dir: model.SocialNetworkData, name: "sn_final", format: model.FileJSON, data: func(r *Result) interface{} { return r.FinalNetwork.Rows() }},
		{dir: model.SocialNetworkData, name: "sn_initial", format: model.FileJSON, data: func(r *Result) interface{} { return r.InitialNetwork.Rows() }},
		{dir: model.ThresholdData, name: "thresh", format: model.FileJSON, data: func(r *Result) interface{} { return r.Population.Thresholds }},
		{dir: model.TypeData, name: "type", format: model.FileJSON, data: func(r *Result) interface{} { return r.Population.TypeMatrix() }},
		{dir: model.BehaviorData, name: "behavior", format: model.FileJSON, data: func(r *Result) interface{} { return r.Behavior }},
		{dir: model.FitnessData, name: "fitness_cascades", format: model.FileJSON, data: func(r *Result) interface{} { return r.Fitness.Cascades }},
		{dir: model.FitnessData, name: "fitness_cascades", format: model.FileFTDC, data: func(r *Result) interface{} { return r.Fitness.Cascades }},
		{dir: model.FitnessData, name: "fitness_behavior", format: model.FileJSON, data: func(r *Result) interface{} { return r.Fitness.Behavior }},
	}
}

// Outputs renders every file of the replicate. Cascade rows are written
// both as JSON and, when there are any, as FTDC time series.
func (r *Result) Outputs() ([]Output, error) {
	if r.InitialNetwork == nil || r.FinalNetwork == nil || r.Population == nil || r.Fitness == nil {
		return nil, errors.New("replicate result is incomplete")
	}

	files := outputFiles()
	out := make([]Output, 0, len(files))
	for _, f := range files {
		key := model.OutputKey(f.dir, r.Parameters.Gamma, f.name, r.Replicate, f.format)

		var payload []byte
		var err error
		switch f.format {
		case model.FileFTDC:
			rows := f.data(r).([]cascade.Row)
			if len(rows) == 0 {
				continue
			}
			payload, err = r.dumpCascades(f.name, rows)
		case model.FileJSON:
			payload, err = json.Marshal(f.data(r))
		default:
			err = f.format.Validate()
		}
		if err != nil {
			return nil, errors.Wrapf(err, "problem rendering %s", key)
		}

		out = append(out, Output{Key: key, Data: payload})
	}

	return out, nil
}

func (r *Result) dumpCascades(name string, rows []cascade.Row) ([]byte, error) {
	collector := ftdc.NewBatchCollector(pointsPerChunk)
	if err := collector.SetMetadata(map[string]interface{}{
		"name":      name,
		"gamma":     r.Parameters.Gamma,
		"replicate": int64(r.Replicate),
		"seed":      r.Seed,
	}); err != nil {
		return nil, errors.WithStack(err)
	}

	for _, row := range rows {
		if err := collector.Add(row); err != nil {
			return nil, errors.Wrap(err, "adding document to FTDC")
		}
	}

	payload, err := collector.Resolve()
	if err != nil {
		return nil, errors.Wrap(err, "dumping FTDC data")
	}

	return payload, nil
}

// Save writes every output of the replicate to the bucket and returns the
// keys it wrote.
func Save(ctx context.Context, bucket pail.Bucket, r *Result) ([]string, error) {
	if bucket == nil {
		return nil, errors.New("cannot save replicate outputs to a nil bucket")
	}

	outputs, err := r.Outputs()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	keys := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if err = bucket.Put(ctx, o.Key, bytes.NewReader(o.Data)); err != nil {
			return keys, errors.Wrapf(err, "problem uploading %s", o.Key)
		}
		keys = append(keys, o.Key)
	}

	grip.Debug(message.Fields{
		"message":   "saved replicate outputs",
		"gamma":     r.Parameters.Gamma,
		"replicate": r.Replicate,
		"files":     len(keys),
	})

	return keys, nil
}

// Record builds the database entry indexing the replicate.
func (r *Result) Record(sweep string, outputs []string) *model.ReplicateRecord {
	record := model.CreateReplicateRecord(model.ReplicateInfo{
		Sweep:     sweep,
		Gamma:     r.Parameters.Gamma,
		Replicate: r.Replicate,
	}, r.Parameters)
	record.InitialTies = r.InitialSummary.Ties
	record.FinalTies = r.FinalSummary.Ties
	if r.Fitness != nil {
		record.MeanAccuracy = r.Fitness.MeanAccuracy()
	}
	record.Outputs = outputs

	return record
}
