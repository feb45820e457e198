package operations

import (
	"context"

	"github.com/cascade-models/netbreak/units"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Simulate returns the ./netbreak simulate command, which runs a single
// replicate in the foreground.
func Simulate() cli.Command {
	return cli.Command{
		Name:  "simulate",
		Usage: "run one replicate of the network-breaking model",
		Flags: mergeFlags(
			configFlags(),
			gammaFlags(),
			[]cli.Flag{
				cli.IntFlag{
					Name:  joinFlagNames(replicateFlag, "r"),
					Usage: "replicate id, which determines the random seed",
				},
			},
			baseFlags(),
			dbFlags()),
		Before: mergeBeforeFuncs(requireFileExistsIfSet(configFlag), requireFlagSet(gammaFlag)),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			conf, err := loadSweepConfig(c.String(configFlag))
			if err != nil {
				return errors.WithStack(err)
			}
			params := conf.Parameters.WithGamma(c.Float64(gammaFlag))
			if err = params.Validate(); err != nil {
				return errors.WithStack(err)
			}

			env, err := newServiceConf(c).setup(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			defer func() { grip.Warning(env.Close(ctx)) }()

			j := units.NewReplicateJob(env, "simulate-"+utility.RandomString(), params, c.Int(replicateFlag))
			j.Run(ctx)

			return errors.Wrapf(j.Error(), "replicate %d failed", c.Int(replicateFlag))
		},
	}
}
