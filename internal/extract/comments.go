package extract

import (
	"os"
	"strings"

	"github.com/evsys/eventlint/internal/model"
)

// commentScanner reads source files to attach comments to call sites. One
// scanner serves one unit walk; files are cached because a unit's records
// cluster in a handful of files.
type commentScanner struct {
	readFile func(string) ([]byte, error)
	files    map[string][]string
}

func newCommentScanner(readFile func(string) ([]byte, error)) *commentScanner {
	if readFile == nil {
		readFile = os.ReadFile
	}
	return &commentScanner{readFile: readFile, files: map[string][]string{}}
}

func (cs *commentScanner) lines(file string) []string {
	if ls, ok := cs.files[file]; ok {
		return ls
	}
	var ls []string
	if data, err := cs.readFile(file); err == nil {
		ls = strings.Split(string(data), "\n")
	}
	cs.files[file] = ls
	return ls
}

func (cs *commentScanner) attached(loc model.SourceLocation) string {
	return AttachedComment(cs.lines(loc.File), loc.Line)
}

// AttachedComment returns the comment block ending on the line directly
// above callLine (1-based), or "" when that line is not a comment.
//
// Accepted shapes, scanning upward from the line above the call:
//   - a run of consecutive // lines
//   - a single-line /* ... */ block
//   - a multi-line /* ... */ block, closed on the line above the call
//
// The first line that is not part of the shape stops the scan. A block
// whose opener never appears yields nothing; half a comment is worse than
// none in a report.
func AttachedComment(lines []string, callLine int) string {
	i := callLine - 2
	if i < 0 || i >= len(lines) {
		return ""
	}
	line := strings.TrimSpace(lines[i])
	switch {
	case strings.HasPrefix(line, "/*") && strings.HasSuffix(line, "*/") && len(line) >= 4:
		return line
	case strings.HasSuffix(line, "*/"):
		var block []string
		for ; i >= 0; i-- {
			l := strings.TrimSpace(lines[i])
			block = append(block, l)
			if strings.HasPrefix(l, "/*") {
				reverse(block)
				return strings.Join(block, "\n")
			}
		}
		return ""
	case strings.HasPrefix(line, "//"):
		var block []string
		for ; i >= 0; i-- {
			l := strings.TrimSpace(lines[i])
			if !strings.HasPrefix(l, "//") {
				break
			}
			block = append(block, l)
		}
		reverse(block)
		return strings.Join(block, "\n")
	}
	return ""
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
