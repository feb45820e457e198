package launch

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/cascade-models/netbreak"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/send"
	"github.com/mongodb/jasper"
	"github.com/pkg/errors"
)

// Launcher runs profiles. Notifications and the output of the launched
// process go to separate senders.
type Launcher struct {
	notify *notifier
	output send.Sender
}

// Result describes a finished run.
type Result struct {
	Profile  string        `bson:"profile" json:"profile" yaml:"profile"`
	Outcome  Outcome       `bson:"outcome" json:"outcome" yaml:"outcome"`
	Started  time.Time     `bson:"started" json:"started" yaml:"started"`
	Duration time.Duration `bson:"duration" json:"duration" yaml:"duration"`
}

// NewLauncher returns a launcher that sends notifications to notify and
// process output to output. Nil senders fall back to the global grip
// sender.
func NewLauncher(notify, output send.Sender) *Launcher {
	if notify == nil {
		notify = grip.GetSender()
	}
	if output == nil {
		output = grip.GetSender()
	}

	return &Launcher{
		notify: newNotifier(notify),
		output: output,
	}
}

// Launch runs the profile's command in its working directory with the
// allocated core count exported, and stops it when the wall-clock limit
// passes. The returned error is non-nil unless the command completed
// successfully.
func (l *Launcher) Launch(ctx context.Context, p *Profile) (*Result, error) {
	if p == nil {
		return nil, errors.New("cannot launch a nil profile")
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid profile")
	}
	limit, err := p.Limit()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if info, err := os.Stat(p.Directory); err != nil || !info.IsDir() {
		return nil, errors.Errorf("working directory '%s' does not exist", p.Directory)
	}

	env := make(map[string]string, len(p.Env)+1)
	for k, v := range p.Env {
		env[k] = v
	}
	env[netbreak.WorkersEnvVar] = strconv.Itoa(p.CoresPerTask)

	res := &Result{Profile: p.Name, Started: time.Now()}
	l.notify.begin(p, limit)

	runCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	err = jasper.NewCommand().
		Directory(p.Directory).
		Environment(env).
		Add(p.Args()).
		SetCombinedSender(level.Info, l.output).
		Run(runCtx)

	res.Duration = time.Since(res.Started)
	switch {
	case err == nil:
		res.Outcome = OutcomeCompleted
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		res.Outcome = OutcomeTimeout
		err = errors.Errorf("run exceeded its time limit of %s", limit)
	default:
		res.Outcome = OutcomeFailed
		err = errors.Wrapf(err, "problem running %v", p.Args())
	}

	l.notify.end(p, res.Outcome, res.Duration, err)

	return res, err
}
