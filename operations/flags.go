package operations

import (
	"strconv"
	"strings"

	"github.com/cascade-models/netbreak"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

////////////////////////////////////////////////////////////////////////
//
// Flag Name Constants

const (
	configFlag  = "config"
	profileFlag = "profile"
	dirFlag     = "dir"
	coresFlag   = "cores"
	timeFlag    = "time"

	gammaFlag     = "gamma"
	replicateFlag = "replicate"
	sweepFlag     = "sweep"
	fileFlag      = "file"

	numWorkersFlag   = "workers"
	outputFlag       = "output"
	bucketTypeFlag   = "bucketType"
	bucketPrefixFlag = "bucketPrefix"

	dbURIFlag  = "dbUri"
	dbNameFlag = "dbName"

	outputEnv = "NETBREAK_OUTPUT"
	dbURIEnv  = "NETBREAK_MONGODB_URL"
	dbNameEnv = "NETBREAK_DATABASE_NAME"
)

////////////////////////////////////////////////////////////////////////
//
// Utility Functions

func joinFlagNames(ids ...string) string { return strings.Join(ids, ", ") }

func mergeFlags(in ...[]cli.Flag) []cli.Flag {
	out := []cli.Flag{}

	for idx := range in {
		out = append(out, in[idx]...)
	}

	return out
}

// indexArgument returns the optional integer positional argument. A
// negative value has to follow "--" so it is not read as a flag.
func indexArgument(c *cli.Context) (*int, error) {
	switch c.NArg() {
	case 0:
		return nil, nil
	case 1:
		idx, err := strconv.Atoi(c.Args().First())
		if err != nil {
			return nil, errors.Errorf("argument '%s' is not an integer", c.Args().First())
		}
		return &idx, nil
	default:
		return nil, errors.Errorf("expected at most one argument, got %d", c.NArg())
	}
}

////////////////////////////////////////////////////////////////////////
//
// Flag Groups

func configFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringFlag{
		Name:  joinFlagNames(configFlag, "c"),
		Usage: "path to a sweep configuration file; defaults apply when omitted",
	})
}

func baseFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.IntFlag{
			Name:   numWorkersFlag,
			Usage:  "specify the number of replicates this process runs at once",
			Value:  2,
			EnvVar: netbreak.WorkersEnvVar,
		},
		cli.StringFlag{
			Name:   joinFlagNames(outputFlag, "o"),
			Usage:  "specify the directory, or bucket name, that outputs are written to",
			Value:  "output",
			EnvVar: outputEnv,
		},
		cli.StringFlag{
			Name:  bucketTypeFlag,
			Usage: "specify the kind of bucket outputs are stored in: 'local|s3|gridfs'",
			Value: "local",
		},
		cli.StringFlag{
			Name:  bucketPrefixFlag,
			Usage: "specify a prefix for the keys of every output",
		})
}

func dbFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:   dbURIFlag,
			Usage:  "specify a mongodb connection string to index finished replicates",
			EnvVar: dbURIEnv,
		},
		cli.StringFlag{
			Name:   dbNameFlag,
			Usage:  "specify a database name to use",
			Value:  "netbreak",
			EnvVar: dbNameEnv,
		})
}

func gammaFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.Float64Flag{
		Name:  joinFlagNames(gammaFlag, "g"),
		Usage: "correlation between the two information sources, in [-1, 1]",
	})
}

func launchFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:  joinFlagNames(profileFlag, "p"),
			Usage: "name of a builtin profile ('full|short') or path to a profile file",
			Value: "full",
		},
		cli.StringFlag{
			Name:  joinFlagNames(dirFlag, "d"),
			Usage: "override the working directory of the profile",
		},
		cli.IntFlag{
			Name:  coresFlag,
			Usage: "override the number of cores allocated to the run",
		},
		cli.StringFlag{
			Name:  timeFlag,
			Usage: "override the wall-clock limit, e.g. '12:00:00' or '1-00'",
		})
}
