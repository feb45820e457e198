package model

import (
	"context"
	"os"

	"github.com/cascade-models/netbreak"
	"github.com/evergreen-ci/pail"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
)

// PailType describes the name of the blob storage backing a pail Bucket
// implementation.
type PailType string

const (
	PailS3     PailType = "s3"
	PailGridFS PailType = "gridfs"
	PailLocal  PailType = "local"

	defaultS3Region  = "us-east-1"
	defaultS3Retries = 10
)

// Validate returns an error for unsupported bucket types.
func (t PailType) Validate() error {
	switch t {
	case PailS3, PailGridFS, PailLocal:
		return nil
	default:
		return errors.Errorf("unsupported bucket type '%s'", t)
	}
}

// Create returns a pail Bucket backed by PailType. For local buckets the
// bucket name is a directory, for S3 and GridFS it names the bucket.
func (t PailType) Create(ctx context.Context, env netbreak.Environment, bucket, prefix string) (pail.Bucket, error) {
	var b pail.Bucket
	var err error

	switch t {
	case PailS3:
		b, err = pail.NewS3Bucket(ctx, s3Options(bucket, prefix))
		if err != nil {
			return nil, errors.WithStack(err)
		}
	case PailGridFS:
		if env == nil || env.GetClient() == nil {
			return nil, errors.New("gridfs buckets require a database connection")
		}
		opts := pail.GridFSOptions{
			Database: env.GetConf().DatabaseName,
			Name:     bucket,
			Prefix:   prefix,
		}
		b, err = pail.NewGridFSBucketWithClient(ctx, env.GetClient(), opts)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	case PailLocal:
		if err = os.MkdirAll(bucket, 0755); err != nil {
			return nil, errors.Wrapf(err, "problem creating local bucket directory %s", bucket)
		}
		opts := pail.LocalOptions{
			Path:   bucket,
			Prefix: prefix,
		}
		b, err = pail.NewLocalBucket(opts)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	default:
		return nil, t.Validate()
	}

	if err = b.Check(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

func s3Options(bucket, prefix string) pail.S3Options {
	return pail.S3Options{
		Name:       bucket,
		Prefix:     prefix,
		Region:     defaultS3Region,
		MaxRetries: utility.ToIntPtr(defaultS3Retries),
	}
}

// OutputBucket creates the bucket that replicate outputs of env are
// written to.
func OutputBucket(ctx context.Context, env netbreak.Environment) (pail.Bucket, error) {
	if env == nil {
		return nil, errors.New("cannot create output bucket with a nil environment")
	}
	conf := env.GetConf()
	if conf == nil {
		return nil, errors.New("environment is not configured")
	}

	return PailType(conf.BucketType).Create(ctx, env, conf.OutputPath, conf.BucketPrefix)
}
