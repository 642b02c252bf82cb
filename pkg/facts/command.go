package facts

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/matzehuels/specdiff/pkg/errors"
)

// Placeholder is replaced by the manifest path in [CommandDeriver] arguments.
const Placeholder = "{}"

// CommandDeriver derives facts by running an external tool.
//
// Argv is the command line; every argument equal to "{}" is replaced by the
// manifest path, and the path is appended when no argument is "{}". The
// tool must print a JSON array of {"name": ..., "args": [...]} objects.
// Non-string arguments are type-tagged like those of [New].
type CommandDeriver struct {
	Argv []string
}

// NewCommandDeriver parses a command line such as "solver facts {}".
// Arguments are split on whitespace.
func NewCommandDeriver(command string) (*CommandDeriver, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "facts command is empty")
	}
	return &CommandDeriver{Argv: argv}, nil
}

// ID implements [Deriver].
func (d *CommandDeriver) ID() string {
	return "command:" + strings.Join(d.Argv, " ")
}

// Derive implements [Deriver].
func (d *CommandDeriver) Derive(ctx context.Context, cfg *Config) (Set, error) {
	if len(d.Argv) == 0 {
		return Set{}, errors.New(errors.ErrCodeInvalidConfig, "facts command is empty")
	}
	if cfg == nil || cfg.Path == "" {
		return Set{}, errors.New(errors.ErrCodeFactDerivation, "command deriver needs a manifest file")
	}

	args := d.args(cfg.Path)
	//nolint:gosec // G204: the command comes from the user's own config
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return Set{}, errors.Wrap(errors.ErrCodeFactDerivation, err, "%s: %s", cfg.Name, msg)
	}

	facts, err := decodeFacts(stdout.Bytes())
	if err != nil {
		return Set{}, errors.Wrap(errors.ErrCodeFactDerivation, err, "%s: decode facts", cfg.Name)
	}
	return NewSet(facts...), nil
}

func (d *CommandDeriver) args(path string) []string {
	out := make([]string, 0, len(d.Argv)+1)
	replaced := false
	for _, a := range d.Argv {
		if a == Placeholder {
			a = path
			replaced = true
		}
		out = append(out, a)
	}
	if !replaced {
		out = append(out, path)
	}
	return out
}

type rawFact struct {
	Name string `json:"name"`
	Args []any  `json:"args"`
}

func decodeFacts(data []byte) ([]Fact, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []rawFact
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	facts := make([]Fact, 0, len(raw))
	for _, r := range raw {
		if r.Name == "" {
			return nil, errors.New(errors.ErrCodeFactDerivation, "fact without name")
		}
		facts = append(facts, New(r.Name, r.Args...))
	}
	return facts, nil
}

var _ Deriver = (*CommandDeriver)(nil)
