package netbreak

import (
	"context"
	"sync"

	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/queue"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var globalEnv Environment

func init() { resetEnv() }

// GetEnvironment returns the process wide environment.
func GetEnvironment() Environment { return globalEnv }

// SetEnvironment replaces the process wide environment.
func SetEnvironment(env Environment) { globalEnv = env }

func resetEnv() { globalEnv = &envState{name: "global"} }

// Environment objects provide access to shared configuration and
// state, in a way that you can isolate and test for.
type Environment interface {
	GetConf() *Configuration

	// GetQueue retrieves the application's shared queue, which runs
	// replicate jobs for sweeps and single simulations alike.
	GetQueue() amboy.Queue
	SetQueue(amboy.Queue) error

	// GetClient returns the database client, or nil when the
	// configuration does not name a database.
	GetClient() *mongo.Client
	GetDB() *mongo.Database

	// Close stops the queue's workers and disconnects from the
	// database.
	Close(context.Context) error
}

// NewEnvironment validates the configuration, starts a local queue with
// the configured number of workers and, when requested, connects to the
// database.
func NewEnvironment(ctx context.Context, name string, conf *Configuration) (Environment, error) {
	if conf == nil {
		return nil, errors.New("configuration is nil")
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "problem validating configuration")
	}

	env := &envState{name: name, conf: conf}

	if conf.HasDatabase() {
		client, err := mongo.Connect(ctx, options.Client().
			ApplyURI(conf.MongoDBURI).
			SetConnectTimeout(conf.MongoDBDialTimeout))
		if err != nil {
			return nil, errors.Wrapf(err, "problem constructing client for %s", conf.MongoDBURI)
		}

		pingCtx, cancel := context.WithTimeout(ctx, conf.MongoDBDialTimeout)
		defer cancel()
		if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
			grip.Warning(message.WrapError(client.Disconnect(ctx), message.Fields{
				"message": "problem disconnecting unreachable client",
				"name":    name,
			}))
			return nil, errors.Wrapf(err, "could not connect to db %s", conf.MongoDBURI)
		}
		env.client = client
	}

	q := queue.NewLocalLimitedSize(conf.NumWorkers, conf.QueueCapacity)
	if err := q.Start(ctx); err != nil {
		catcher := grip.NewBasicCatcher()
		catcher.Wrap(err, "problem starting queue")
		if env.client != nil {
			catcher.Wrap(env.client.Disconnect(ctx), "problem disconnecting from database")
		}
		return nil, catcher.Resolve()
	}
	env.queue = q

	grip.Info(message.Fields{
		"message":  "configured environment",
		"name":     name,
		"workers":  conf.NumWorkers,
		"output":   conf.OutputPath,
		"bucket":   conf.BucketType,
		"database": conf.DatabaseName,
	})

	return env, nil
}

type envState struct {
	name   string
	queue  amboy.Queue
	client *mongo.Client
	conf   *Configuration
	mutex  sync.RWMutex
}

func (c *envState) SetQueue(q amboy.Queue) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.queue != nil {
		return errors.New("queue exists, cannot overwrite")
	}

	if q == nil {
		return errors.New("cannot set queue to nil")
	}

	c.queue = q
	grip.Noticef("caching a '%T' queue in the '%s' environment for use in jobs", q, c.name)
	return nil
}

func (c *envState) GetQueue() amboy.Queue {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.queue
}

func (c *envState) GetClient() *mongo.Client {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.client
}

func (c *envState) GetDB() *mongo.Database {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.client == nil || c.conf == nil {
		return nil
	}

	return c.client.Database(c.conf.DatabaseName)
}

func (c *envState) GetConf() *Configuration {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.conf == nil {
		return nil
	}

	// copy the struct
	out := &Configuration{}
	*out = *c.conf

	return out
}

func (c *envState) Close(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.queue != nil {
		c.queue.Close(ctx)
		c.queue = nil
	}

	if c.client == nil {
		return nil
	}

	err := c.client.Disconnect(ctx)
	c.client = nil
	return errors.Wrap(err, "problem disconnecting from database")
}
