package operations

import (
	"context"

	"github.com/cascade-models/netbreak"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

type serviceConf struct {
	numWorkers   int
	output       string
	bucketType   string
	bucketPrefix string
	mongodbURI   string
	dbName       string
}

func newServiceConf(c *cli.Context) *serviceConf {
	return &serviceConf{
		numWorkers:   c.Int(numWorkersFlag),
		output:       c.String(outputFlag),
		bucketType:   c.String(bucketTypeFlag),
		bucketPrefix: c.String(bucketPrefixFlag),
		mongodbURI:   c.String(dbURIFlag),
		dbName:       c.String(dbNameFlag),
	}
}

func (c *serviceConf) export() *netbreak.Configuration {
	conf := &netbreak.Configuration{
		OutputPath:   c.output,
		BucketType:   c.bucketType,
		BucketPrefix: c.bucketPrefix,
		MongoDBURI:   c.mongodbURI,
		NumWorkers:   c.numWorkers,
	}
	if c.mongodbURI != "" {
		conf.DatabaseName = c.dbName
	}
	return conf
}

// setup builds the process environment and installs it as the global one
// so that jobs built from the registry find it.
func (c *serviceConf) setup(ctx context.Context) (netbreak.Environment, error) {
	env, err := netbreak.NewEnvironment(ctx, "netbreak", c.export())
	if err != nil {
		return nil, errors.Wrap(err, "problem setting up environment")
	}
	netbreak.SetEnvironment(env)

	return env, nil
}
