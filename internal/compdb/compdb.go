// Package compdb reads clang compilation databases. A scan starts from a
// compile_commands.json; each entry names one translation unit and the
// compiler invocation that builds it.
package compdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Command is one compilation database entry. Entries carry the invocation
// either as an arguments array or as a shell-quoted command string, never
// reliably both.
type Command struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments,omitempty"`
	Command   string   `json:"command,omitempty"`
	Output    string   `json:"output,omitempty"`
}

// Argv returns the compiler invocation as an argument vector.
func (c Command) Argv() []string {
	if len(c.Arguments) > 0 {
		return c.Arguments
	}
	return splitCommand(c.Command)
}

// AbsFile resolves the entry's file path against its build directory.
func (c Command) AbsFile() string {
	if filepath.IsAbs(c.File) || c.Directory == "" {
		return c.File
	}
	return filepath.Join(c.Directory, c.File)
}

// Load reads compile_commands.json from dir. A missing or unparseable
// database is fatal; an empty one is the caller's problem to report.
func Load(dir string) ([]Command, error) {
	path := filepath.Join(dir, "compile_commands.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading compilation database: %w", err)
	}
	var cmds []Command
	if err := json.Unmarshal(data, &cmds); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cmds, nil
}

// splitCommand splits a shell-quoted command string into arguments. This
// covers the POSIX subset build systems actually emit: whitespace
// separation, single and double quotes, backslash escapes.
func splitCommand(s string) []string {
	var (
		args    []string
		cur     strings.Builder
		quote   byte
		escaped bool
		started bool
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			cur.WriteByte(ch)
			escaped = false
		case ch == '\\' && quote != '\'':
			escaped = true
			started = true
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				cur.WriteByte(ch)
			}
		case ch == '\'' || ch == '"':
			quote = ch
			started = true
		case ch == ' ' || ch == '\t':
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteByte(ch)
			started = true
		}
	}
	if started {
		args = append(args, cur.String())
	}
	return args
}
