package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Parser produces the syntax tree of one translation unit.
type Parser interface {
	Parse(ctx context.Context, file string, compileArgs []string) (*Node, error)
}

// DumpParser runs the external dumper once per translation unit:
//
//	<command> <file> -- <compile args...>
//
// The child writes the tree to stdout and diagnostics to stderr. A child
// that dies takes only its own unit with it.
type DumpParser struct {
	Command string
}

func (p *DumpParser) Parse(ctx context.Context, file string, compileArgs []string) (*Node, error) {
	if p.Command == "" {
		return nil, errors.New("frontend: dumper command not configured")
	}
	args := make([]string, 0, len(compileArgs)+2)
	args = append(args, file, "--")
	args = append(args, compileArgs...)

	cmd := exec.CommandContext(ctx, p.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("frontend: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("frontend: starting %s: %w", p.Command, err)
	}

	root, decodeErr := Decode(stdout)
	if waitErr := cmd.Wait(); waitErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("frontend: %s failed on %s: %w: %s", p.Command, file, waitErr, msg)
		}
		return nil, fmt.Errorf("frontend: %s failed on %s: %w", p.Command, file, waitErr)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("frontend: %s on %s: %w", p.Command, file, decodeErr)
	}
	return root, nil
}
