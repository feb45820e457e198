package operations

import (
	"context"
	"strings"

	"github.com/cascade-models/netbreak/model"
	"github.com/cascade-models/netbreak/sim"
	"github.com/cascade-models/netbreak/util"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Summarize returns the ./netbreak summarize command, which reports the
// mean accuracy of every stored replicate at one correlation.
func Summarize() cli.Command {
	return cli.Command{
		Name:  "summarize",
		Usage: "report mean behavioral accuracy per replicate for one gamma",
		Flags: mergeFlags(
			gammaFlags(),
			[]cli.Flag{
				cli.StringFlag{
					Name:  joinFlagNames(fileFlag, "f"),
					Usage: "write the summary to this file instead of standard output; '.yaml' files are written as YAML",
				},
				cli.StringFlag{
					Name:  sweepFlag,
					Usage: "also list the indexed replicates of this sweep id (requires a database)",
				},
			},
			baseFlags(),
			dbFlags()),
		Before: requireFlagSet(gammaFlag),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			gamma := c.Float64(gammaFlag)

			env, err := newServiceConf(c).setup(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			defer func() { grip.Warning(env.Close(ctx)) }()

			bucket, err := model.OutputBucket(ctx, env)
			if err != nil {
				return errors.WithStack(err)
			}

			summaries, err := sim.Summarize(ctx, bucket, gamma)
			if err != nil {
				return errors.WithStack(err)
			}
			accuracy := make([]float64, 0, len(summaries))
			for _, s := range summaries {
				accuracy = append(accuracy, s.MeanAccuracy)
			}
			grip.Info(message.Fields{
				"message":       "summarized stored replicates",
				"gamma":         gamma,
				"output":        c.String(outputFlag),
				"replicates":    len(summaries),
				"mean_accuracy": util.Average(accuracy),
			})

			if sweep := c.String(sweepFlag); sweep != "" {
				records, err := model.FindReplicateRecords(ctx, env, sweep, gamma)
				if err != nil {
					return errors.WithStack(err)
				}
				for _, r := range records {
					grip.Info(message.Fields{
						"sweep":         sweep,
						"gamma":         gamma,
						"replicate":     r.Info.Replicate,
						"initial_ties":  r.InitialTies,
						"final_ties":    r.FinalTies,
						"mean_accuracy": r.MeanAccuracy,
						"completed_at":  r.CompletedAt,
					})
				}
			}

			switch fn := c.String(fileFlag); {
			case fn == "":
			case strings.HasSuffix(fn, ".yaml"), strings.HasSuffix(fn, ".yml"):
				return errors.WithStack(util.WriteYAML(fn, summaries))
			default:
				return errors.WithStack(util.WriteJSON(fn, summaries))
			}
			return errors.WithStack(util.PrintJSON(summaries))
		},
	}
}
