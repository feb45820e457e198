package launch

import (
	"time"

	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/logging"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/send"
)

// Outcome is how a launched run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimeout   Outcome = "timeout"
)

type notifier struct {
	journal *logging.Grip
}

func newNotifier(sender send.Sender) *notifier {
	return &notifier{journal: logging.MakeGrip(sender)}
}

func (n *notifier) begin(p *Profile, limit time.Duration) {
	if !p.NotifyBegin {
		return
	}

	n.journal.Notice(message.Fields{
		"message":    "run began",
		"event":      "BEGIN",
		"profile":    p.Name,
		"directory":  p.Directory,
		"command":    p.Args(),
		"cores":      p.CoresPerTask,
		"time_limit": limit.String(),
	})
}

func (n *notifier) end(p *Profile, outcome Outcome, elapsed time.Duration, err error) {
	if !p.NotifyEnd {
		return
	}

	msg := message.Fields{
		"message":       "run ended",
		"event":         "END",
		"profile":       p.Name,
		"outcome":       outcome,
		"duration_secs": elapsed.Seconds(),
	}
	if err != nil {
		msg["error"] = err.Error()
	}

	priority := level.Notice
	if outcome != OutcomeCompleted {
		priority = level.Error
	}
	n.journal.Log(priority, msg)
}
