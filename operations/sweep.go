package operations

import (
	"context"
	"strings"

	"github.com/cascade-models/netbreak/sim"
	"github.com/cascade-models/netbreak/units"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Sweep returns the ./netbreak sweep command, which runs every replicate
// of a sweep configuration on a local worker pool. An optional integer
// argument selects a single correlation by index; negative indices count
// from the end, so "-- -1" runs only the last one.
func Sweep() cli.Command {
	return cli.Command{
		Name: "sweep",
		Usage: strings.Join([]string{
			"run a parameter sweep of the network-breaking model",
			"takes an optional gamma index, e.g. 'sweep -- -1' for the last gamma",
		}, "\n\t"),
		ArgsUsage: "[gamma index]",
		Flags:     mergeFlags(configFlags(), baseFlags(), dbFlags()),
		Before:    mergeBeforeFuncs(requireFileExistsIfSet(configFlag), requireIndexArgument),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			conf, err := loadSweepConfig(c.String(configFlag))
			if err != nil {
				return errors.WithStack(err)
			}

			index, err := indexArgument(c)
			if err != nil {
				return errors.WithStack(err)
			}

			sweep, err := units.NewSweep(conf, index)
			if err != nil {
				return errors.WithStack(err)
			}

			env, err := newServiceConf(c).setup(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			defer func() { grip.Warning(env.Close(ctx)) }()

			if err = sweep.Run(ctx, env); err != nil {
				return errors.Wrapf(err, "sweep %s failed", sweep.ID)
			}

			grip.Notice(message.Fields{
				"message": "sweep complete",
				"sweep":   sweep.ID,
				"gammas":  sweep.Gammas,
				"output":  c.String(outputFlag),
			})
			return nil
		},
	}
}

func loadSweepConfig(path string) (*sim.SweepConfig, error) {
	if path == "" {
		conf := sim.DefaultSweepConfig()
		return conf, errors.WithStack(conf.Validate())
	}
	return sim.LoadSweepConfig(path)
}
