package netbreak

import (
	"time"

	"github.com/mongodb/grip"
)

// Configuration defines the shared settings of a simulation process: where
// replicate outputs go, how many replicates run at once and, optionally,
// the database that indexes finished replicates.
type Configuration struct {
	OutputPath         string        `bson:"output_path" json:"output_path" yaml:"output_path"`
	BucketType         string        `bson:"bucket_type" json:"bucket_type" yaml:"bucket_type"`
	BucketPrefix       string        `bson:"bucket_prefix" json:"bucket_prefix" yaml:"bucket_prefix"`
	DatabaseName       string        `bson:"database_name" json:"database_name" yaml:"database_name"`
	MongoDBURI         string        `bson:"mongodb_uri" json:"mongodb_uri" yaml:"mongodb_uri"`
	MongoDBDialTimeout time.Duration `bson:"dial_timeout" json:"dial_timeout" yaml:"dial_timeout"`
	NumWorkers         int           `bson:"workers" json:"workers" yaml:"workers"`
	QueueCapacity      int           `bson:"queue_capacity" json:"queue_capacity" yaml:"queue_capacity"`
}

// Validate checks the configuration and fills in defaults for optional
// settings.
func (c *Configuration) Validate() error {
	catcher := grip.NewBasicCatcher()

	catcher.NewWhen(c.OutputPath == "", "must specify an output path")
	catcher.NewWhen(c.NumWorkers < 1, "must specify a valid number of amboy workers")
	catcher.NewWhen(c.MongoDBURI != "" && c.DatabaseName == "", "must specify a database name when using mongodb")

	if c.BucketType == "" {
		c.BucketType = "local"
	}
	if c.MongoDBDialTimeout <= 0 {
		c.MongoDBDialTimeout = 2 * time.Second
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = defaultQueueCapacity
	}

	return catcher.Resolve()
}

// HasDatabase reports whether finished replicates should be indexed.
func (c *Configuration) HasDatabase() bool { return c.MongoDBURI != "" }
