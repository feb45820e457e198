package model

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"time"

	"github.com/cascade-models/netbreak"
	"github.com/mongodb/anser/bsonutil"
	"github.com/mongodb/anser/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReplicateRecord indexes a finished replicate: its parameters, where its
// outputs were written and a few headline results.
type ReplicateRecord struct {
	ID           string        `bson:"_id,omitempty"`
	Info         ReplicateInfo `bson:"info"`
	Parameters   Parameters    `bson:"parameters"`
	Seed         int64         `bson:"seed"`
	InitialTies  int           `bson:"initial_ties"`
	FinalTies    int           `bson:"final_ties"`
	MeanAccuracy float64       `bson:"mean_accuracy"`
	Outputs      []string      `bson:"outputs"`
	CreatedAt    time.Time     `bson:"created_at"`
	CompletedAt  time.Time     `bson:"completed_at"`

	env       netbreak.Environment
	populated bool
}

// ReplicateInfo identifies one replicate of a sweep.
type ReplicateInfo struct {
	Sweep     string  `bson:"sweep,omitempty"`
	Gamma     float64 `bson:"gamma"`
	Replicate int     `bson:"replicate"`
}

var (
	replicateRecordIDKey          = bsonutil.MustHaveTag(ReplicateRecord{}, "ID")
	replicateRecordInfoKey        = bsonutil.MustHaveTag(ReplicateRecord{}, "Info")
	replicateRecordCompletedAtKey = bsonutil.MustHaveTag(ReplicateRecord{}, "CompletedAt")

	replicateInfoSweepKey     = bsonutil.MustHaveTag(ReplicateInfo{}, "Sweep")
	replicateInfoGammaKey     = bsonutil.MustHaveTag(ReplicateInfo{}, "Gamma")
	replicateInfoReplicateKey = bsonutil.MustHaveTag(ReplicateInfo{}, "Replicate")
)

// ID hashes the identifying fields of the replicate.
func (info ReplicateInfo) ID() string {
	hash := sha1.New()
	_, _ = io.WriteString(hash, info.Sweep)
	_, _ = io.WriteString(hash, GammaLabel(info.Gamma))
	_, _ = io.WriteString(hash, fmt.Sprint(info.Replicate))
	return fmt.Sprintf("%x", hash.Sum(nil))
}

// CreateReplicateRecord is the entry point for indexing a replicate.
func CreateReplicateRecord(info ReplicateInfo, params Parameters) *ReplicateRecord {
	return &ReplicateRecord{
		ID:         info.ID(),
		Info:       info,
		Parameters: params,
		Seed:       params.Seed(info.Replicate),
		CreatedAt:  time.Now(),
		populated:  true,
	}
}

// Setup sets the environment for the record. The environment is required
// for every database operation.
func (r *ReplicateRecord) Setup(e netbreak.Environment) { r.env = e }

// IsNil returns if the record is populated or not.
func (r *ReplicateRecord) IsNil() bool { return !r.populated }

// Find searches the database for the record, by ID or, when unset, by the
// ID derived from Info.
func (r *ReplicateRecord) Find(ctx context.Context) error {
	if r.env == nil || r.env.GetDB() == nil {
		return errors.New("cannot find with a nil database")
	}

	if r.ID == "" {
		r.ID = r.Info.ID()
	}

	r.populated = false
	err := r.env.GetDB().Collection(netbreak.RecordCollection).FindOne(ctx, bson.M{replicateRecordIDKey: r.ID}).Decode(r)
	if db.ResultsNotFound(err) {
		return errors.Errorf("could not find replicate record in the database with id %s", r.ID)
	} else if err != nil {
		return errors.Wrapf(err, "problem finding replicate record with id %s", r.ID)
	}

	r.populated = true

	return nil
}

// Save upserts the record, so rerunning a replicate replaces its entry.
func (r *ReplicateRecord) Save(ctx context.Context) error {
	if !r.populated {
		return errors.New("cannot save unpopulated replicate record")
	}
	if r.env == nil || r.env.GetDB() == nil {
		return errors.New("cannot save with a nil database")
	}

	if r.ID == "" {
		r.ID = r.Info.ID()
	}

	result, err := r.env.GetDB().Collection(netbreak.RecordCollection).ReplaceOne(
		ctx,
		bson.M{replicateRecordIDKey: r.ID},
		r,
		options.Replace().SetUpsert(true),
	)
	grip.DebugWhen(err == nil, message.Fields{
		"collection": netbreak.RecordCollection,
		"id":         r.ID,
		"gamma":      r.Info.Gamma,
		"replicate":  r.Info.Replicate,
		"result":     result,
		"op":         "save replicate record",
	})

	return errors.Wrapf(err, "problem saving replicate record %s", r.ID)
}

// Remove deletes the record from the database.
func (r *ReplicateRecord) Remove(ctx context.Context) error {
	if r.env == nil || r.env.GetDB() == nil {
		return errors.New("cannot remove with a nil database")
	}

	if r.ID == "" {
		r.ID = r.Info.ID()
	}

	_, err := r.env.GetDB().Collection(netbreak.RecordCollection).DeleteOne(ctx, bson.M{replicateRecordIDKey: r.ID})
	return errors.Wrapf(err, "problem removing replicate record %s", r.ID)
}

// FindReplicateRecords returns the completed replicates of a sweep at the
// given correlation, ordered by replicate id.
func FindReplicateRecords(ctx context.Context, env netbreak.Environment, sweep string, gamma float64) ([]ReplicateRecord, error) {
	if env == nil || env.GetDB() == nil {
		return nil, errors.New("cannot find with a nil database")
	}

	filter := bson.M{}
	filter[bsonutil.GetDottedKeyName(replicateRecordInfoKey, replicateInfoSweepKey)] = sweep
	filter[bsonutil.GetDottedKeyName(replicateRecordInfoKey, replicateInfoGammaKey)] = gamma
	filter[replicateRecordCompletedAtKey] = bson.M{"$ne": time.Time{}}

	opts := options.Find().SetSort(bson.M{
		bsonutil.GetDottedKeyName(replicateRecordInfoKey, replicateInfoReplicateKey): 1,
	})

	cur, err := env.GetDB().Collection(netbreak.RecordCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "problem finding replicate records")
	}

	out := []ReplicateRecord{}
	if err = cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "problem decoding replicate records")
	}
	for i := range out {
		out[i].env = env
		out[i].populated = true
	}

	return out, nil
}
