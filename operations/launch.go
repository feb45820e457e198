package operations

import (
	"context"
	"os"

	"github.com/cascade-models/netbreak/launch"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/send"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Launch returns the ./netbreak launch command, which starts a run under a
// resource profile and reports when it begins and ends. An optional
// integer argument replaces the profile's argument.
func Launch() cli.Command {
	return cli.Command{
		Name:      "launch",
		Usage:     "launch a simulation run under a resource profile",
		ArgsUsage: "[argument]",
		Flags:     launchFlags(),
		Before:    requireIndexArgument,
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			profile, err := resolveProfile(c)
			if err != nil {
				return errors.WithStack(err)
			}

			output, err := send.NewPlainLogger(profile.Name, send.LevelInfo{Default: level.Info, Threshold: level.Info})
			if err != nil {
				return errors.Wrap(err, "problem creating output logger")
			}

			res, err := launch.NewLauncher(grip.GetSender(), output).Launch(ctx, profile)
			if res != nil {
				grip.Info(message.Fields{
					"message":       "launch finished",
					"profile":       res.Profile,
					"outcome":       res.Outcome,
					"duration_secs": res.Duration.Seconds(),
				})
			}
			return errors.WithStack(err)
		},
	}
}

func resolveProfile(c *cli.Context) (*launch.Profile, error) {
	profile, err := launch.LoadProfile(c.String(profileFlag))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if dir := c.String(dirFlag); dir != "" {
		profile.Directory = dir
	}
	if cores := c.Int(coresFlag); cores != 0 {
		profile.CoresPerTask = cores
	}
	if limit := c.String(timeFlag); limit != "" {
		profile.TimeLimit = limit
	}
	if c.NArg() == 1 {
		profile.Arg = c.Args().First()
	}

	// builtin profiles relaunch this binary
	if utility.StringSliceContains(launch.BuiltinNames(), c.String(profileFlag)) {
		exe, err := os.Executable()
		if err != nil {
			return nil, errors.Wrap(err, "problem resolving executable")
		}
		profile.Command[0] = exe
	}

	return profile, errors.WithStack(profile.Validate())
}
