// Package page fills documentation templates with generated graph data.
//
// A template is plain text carrying one or more substitution blocks. A
// block opens with a line whose trimmed content is exactly "/** +-+" and
// closes with "-+- **/"; the marker lines themselves are dropped from
// the output. Inside a block, tags written {:name:} are replaced with
// their values; everything outside blocks passes through verbatim,
// including tag-shaped text.
package page

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	openMarker  = "/** +-+"
	closeMarker = "-+- **/"
	tagOpen     = "{:"
	tagClose    = ":}"
)

// Tags maps tag names to their replacement text.
type Tags map[string]string

// Render substitutes every block in template. Unknown tags inside a
// block are reported through warnf and replaced with their literal
// name. Unbalanced block markers are an error.
func Render(template []byte, tags Tags, warnf func(format string, args ...any)) ([]byte, error) {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	lines := strings.Split(string(template), "\n")
	out := make([]string, 0, len(lines))
	var block []string
	inBlock := false
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case openMarker:
			if inBlock {
				return nil, fmt.Errorf("line %d: block opened inside an open block", i+1)
			}
			inBlock = true
			block = block[:0]
		case closeMarker:
			if !inBlock {
				return nil, fmt.Errorf("line %d: block closed without an open marker", i+1)
			}
			inBlock = false
			for _, bl := range block {
				out = append(out, substituteLine(bl, tags, warnf))
			}
		default:
			if inBlock {
				block = append(block, line)
			} else {
				out = append(out, line)
			}
		}
	}
	if inBlock {
		return nil, fmt.Errorf("template ends inside an open block")
	}
	return []byte(strings.Join(out, "\n")), nil
}

// substituteLine replaces every complete {:name:} occurrence. A tag
// opener without its closer is left as written.
func substituteLine(line string, tags Tags, warnf func(string, ...any)) string {
	var b strings.Builder
	for {
		start := strings.Index(line, tagOpen)
		if start < 0 {
			b.WriteString(line)
			break
		}
		rest := line[start+len(tagOpen):]
		end := strings.Index(rest, tagClose)
		if end < 0 {
			b.WriteString(line)
			break
		}
		name := strings.TrimSpace(rest[:end])
		b.WriteString(line[:start])
		if val, ok := tags[name]; ok {
			b.WriteString(val)
		} else {
			warnf("unknown template tag %q, substituting its name", name)
			b.WriteString(name)
		}
		line = rest[end+len(tagClose):]
	}
	return b.String()
}

// RenderFile reads a template and a generated graph, substitutes the
// graph tags, and writes the finished page. The graph tag inlines the
// graph file verbatim; graph_name carries its base filename.
func RenderFile(templatePath, graphPath, outputPath string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}
	graphData, err := os.ReadFile(graphPath)
	if err != nil {
		return fmt.Errorf("reading graph: %w", err)
	}
	tags := Tags{
		"graph":      strings.TrimRight(string(graphData), "\n"),
		"graph_name": filepath.Base(graphPath),
	}
	rendered, err := Render(template, tags, func(format string, args ...any) {
		log.Warn(fmt.Sprintf(format, args...))
	})
	if err != nil {
		return fmt.Errorf("rendering %s: %w", templatePath, err)
	}
	if err := os.WriteFile(outputPath, rendered, 0o644); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	return nil
}
