// Package launch starts a simulation process under a resource profile:
// a fixed allocation, a wall-clock limit, and notifications when the
// process begins and ends.
package launch

import (
	"strconv"
	"strings"
	"time"

	"github.com/cascade-models/netbreak/util"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
)

const (
	FullProfile  = "full"
	ShortProfile = "short"

	defaultCores   = 20
	defaultCommand = "netbreak"
)

// Profile describes how to launch one simulation run and the resources it
// may use.
type Profile struct {
	Name         string            `bson:"name" json:"name" yaml:"name"`
	Nodes        int               `bson:"nodes" json:"nodes" yaml:"nodes"`
	Tasks        int               `bson:"tasks" json:"tasks" yaml:"tasks"`
	CoresPerTask int               `bson:"cores_per_task" json:"cores_per_task" yaml:"cores_per_task"`
	TimeLimit    string            `bson:"time_limit" json:"time_limit" yaml:"time_limit"`
	NotifyBegin  bool              `bson:"notify_begin" json:"notify_begin" yaml:"notify_begin"`
	NotifyEnd    bool              `bson:"notify_end" json:"notify_end" yaml:"notify_end"`
	Directory    string            `bson:"directory" json:"directory" yaml:"directory"`
	Command      []string          `bson:"command" json:"command" yaml:"command"`
	Arg          string            `bson:"arg,omitempty" json:"arg,omitempty" yaml:"arg,omitempty"`
	Env          map[string]string `bson:"env,omitempty" json:"env,omitempty" yaml:"env,omitempty"`
}

// Validate checks that the profile describes a single-node, single-task
// allocation that can be launched.
func (p *Profile) Validate() error {
	catcher := grip.NewBasicCatcher()

	catcher.NewWhen(p.Name == "", "must specify a profile name")
	catcher.ErrorfWhen(p.Nodes != 1, "node count must be 1, not %d", p.Nodes)
	catcher.ErrorfWhen(p.Tasks != 1, "task count must be 1, not %d", p.Tasks)
	catcher.ErrorfWhen(p.CoresPerTask < 1, "cores per task %d must be positive", p.CoresPerTask)
	catcher.NewWhen(p.Directory == "", "must specify a working directory")
	catcher.NewWhen(len(p.Command) == 0 || p.Command[0] == "", "must specify a command")

	if limit, err := ParseTimeLimit(p.TimeLimit); err != nil {
		catcher.Wrap(err, "invalid time limit")
	} else {
		catcher.NewWhen(limit <= 0, "time limit must be positive")
	}

	if p.Arg != "" {
		idx, err := strconv.Atoi(p.Arg)
		catcher.ErrorfWhen(err != nil, "argument '%s' is not an integer", p.Arg)
		catcher.ErrorfWhen(err == nil && idx < 0 && !p.endsOptions(),
			"negative argument '%s' requires the command to end with '--'", p.Arg)
	}

	return catcher.Resolve()
}

// endsOptions reports whether the command ends option parsing, so that
// a negative argument reaches it as a positional.
func (p *Profile) endsOptions() bool {
	return len(p.Command) > 0 && p.Command[len(p.Command)-1] == "--"
}

// Limit returns the parsed wall-clock limit.
func (p *Profile) Limit() (time.Duration, error) { return ParseTimeLimit(p.TimeLimit) }

// Args returns the full command line of the run.
func (p *Profile) Args() []string {
	out := append([]string{}, p.Command...)
	if p.Arg != "" {
		out = append(out, p.Arg)
	}
	return out
}

// BuiltinNames lists the predefined profiles.
func BuiltinNames() []string { return []string{FullProfile, ShortProfile} }

// Builtin returns a copy of one of the predefined profiles: "full" runs
// the last correlation of the sweep for up to twelve hours, "short" runs
// the whole sweep for just under six. Their command ends options with
// "--" so that negative arguments reach the sweep as positionals.
func Builtin(name string) (*Profile, error) {
	p := &Profile{
		Name:         name,
		Nodes:        1,
		Tasks:        1,
		CoresPerTask: defaultCores,
		NotifyBegin:  true,
		NotifyEnd:    true,
		Directory:    ".",
		Command:      []string{defaultCommand, "sweep", "--"},
	}

	switch name {
	case FullProfile:
		p.TimeLimit = "12:00:00"
		p.Arg = "-1"
	case ShortProfile:
		p.TimeLimit = "5:59:00"
	default:
		return nil, errors.Errorf("no builtin profile named '%s'", name)
	}

	return p, nil
}

// LoadProfile resolves a builtin profile by name or reads one from a YAML
// file.
func LoadProfile(nameOrPath string) (*Profile, error) {
	if p, err := Builtin(nameOrPath); err == nil {
		return p, nil
	}

	if !util.FileExists(nameOrPath) {
		return nil, errors.Errorf("'%s' is neither a builtin profile nor a file", nameOrPath)
	}

	p := &Profile{}
	if err := util.ReadFileYAML(nameOrPath, p); err != nil {
		return nil, errors.Wrap(err, "problem reading profile")
	}
	if p.Name == "" {
		p.Name = nameOrPath
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid profile '%s'", p.Name)
	}

	return p, nil
}

// ParseTimeLimit parses a wall-clock limit written in one of the forms
// batch schedulers accept: "MM", "MM:SS", "HH:MM:SS", "D-HH", "D-HH:MM"
// or "D-HH:MM:SS".
func ParseTimeLimit(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("time limit is empty")
	}

	days := 0
	clock := s
	hasDays := false
	if d, rest, ok := strings.Cut(s, "-"); ok {
		n, err := parseField(d, -1)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid days in '%s'", s)
		}
		days = n
		clock = rest
		hasDays = true
	}

	parts := strings.Split(clock, ":")
	if len(parts) > 3 {
		return 0, errors.Errorf("too many fields in time limit '%s'", s)
	}

	// units of each field, from the leading one
	var units []time.Duration
	switch {
	case hasDays:
		units = []time.Duration{time.Hour, time.Minute, time.Second}[:len(parts)]
	case len(parts) == 3:
		units = []time.Duration{time.Hour, time.Minute, time.Second}
	default:
		units = []time.Duration{time.Minute, time.Second}[:len(parts)]
	}

	total := time.Duration(days) * 24 * time.Hour
	for i, part := range parts {
		limit := 60
		if i == 0 && !hasDays {
			limit = -1
		} else if i == 0 {
			limit = 24
		}

		n, err := parseField(part, limit)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid time limit '%s'", s)
		}
		total += time.Duration(n) * units[i]
	}

	return total, nil
}

// parseField parses a non-negative integer field, which must be below
// limit unless limit is negative.
func parseField(s string, limit int) (int, error) {
	if s == "" {
		return 0, errors.New("empty field")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.Errorf("field '%s' is not a non-negative integer", s)
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if limit >= 0 && n >= limit {
		return 0, errors.Errorf("field %d must be less than %d", n, limit)
	}
	return n, nil
}
