// Package vcs shells out to git to annotate report lines with blame
// information. Absence of git, or of a repository, degrades to no
// annotation; it never fails a check.
package vcs

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

var (
	agoLineNo   = regexp.MustCompile(`ago\s*[0-9]*\)`)
	authorStart = regexp.MustCompile(`\((\S+)`)
	afterParen  = regexp.MustCompile(`\)(\s+\S)`)

	authorColor = color.New(color.Bold)
	codeColor   = color.New(color.FgHiYellow)
)

// BlameLine runs git blame for a single line of file, relative to the
// repository at root, and returns the colorized annotation.
func BlameLine(root, file string, line int) (string, error) {
	rng := fmt.Sprintf("%d,%d", line, line)
	cmd := exec.Command("git", "blame", "--date=relative", "-L", rng, "--", file)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git blame %s:%d: %w", file, line, err)
	}
	return Colorize(strings.TrimRight(string(out), "\n")), nil
}

// Colorize rewrites one git blame line for the report: the in-annotation
// line number is dropped (the report already says which line), the author
// is bolded, and the code after the annotation is highlighted.
func Colorize(blame string) string {
	s := agoLineNo.ReplaceAllString(blame, "ago)")
	s = authorStart.ReplaceAllString(s, "("+authorColor.Sprint("$1"))
	s = afterParen.ReplaceAllString(s, ")"+codeColor.Sprint("$1"))
	return s
}
