package page

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, template string, tags Tags) (string, []string) {
	t.Helper()
	var warnings []string
	out, err := Render([]byte(template), tags, func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})
	require.NoError(t, err)
	return string(out), warnings
}

func TestRenderSubstitutesBlock(t *testing.T) {
	template := "<html>\n/** +-+\nvar data = {:graph:};\n-+- **/\n</html>\n"
	out, warnings := render(t, template, Tags{"graph": `[{"id":"n"}]`})
	assert.Equal(t, "<html>\nvar data = [{\"id\":\"n\"}];\n</html>\n", out)
	assert.Empty(t, warnings)
}

func TestRenderMultipleBlocks(t *testing.T) {
	template := "a\n/** +-+\n{:name:}\n-+- **/\nb\n/** +-+\n{:name:} again\n-+- **/\nc"
	out, _ := render(t, template, Tags{"name": "graph.json"})
	assert.Equal(t, "a\ngraph.json\nb\ngraph.json again\nc", out)
}

func TestRenderMultipleTagsOnOneLine(t *testing.T) {
	template := "/** +-+\n{:a:}-{:b:}\n-+- **/"
	out, _ := render(t, template, Tags{"a": "1", "b": "2"})
	assert.Equal(t, "1-2", out)
}

func TestRenderUnknownTagWarnsAndKeepsName(t *testing.T) {
	template := "/** +-+\ntitle: {:title:}\n-+- **/"
	out, warnings := render(t, template, Tags{})
	assert.Equal(t, "title: title", out)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `"title"`)
}

func TestRenderLeavesTagsOutsideBlocksAlone(t *testing.T) {
	template := "{:graph:} stays\n/** +-+\n{:graph:}\n-+- **/"
	out, _ := render(t, template, Tags{"graph": "DATA"})
	assert.Equal(t, "{:graph:} stays\nDATA", out)
}

func TestRenderKeepsUnterminatedTag(t *testing.T) {
	template := "/** +-+\nbroken {:graph\n-+- **/"
	out, warnings := render(t, template, Tags{"graph": "DATA"})
	assert.Equal(t, "broken {:graph", out)
	assert.Empty(t, warnings)
}

func TestRenderMarkerIndentationIgnored(t *testing.T) {
	template := "  /** +-+\n  {:v:}\n\t-+- **/"
	out, _ := render(t, template, Tags{"v": "x"})
	assert.Equal(t, "  x", out)
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  string
	}{
		{"close before open", "-+- **/\n", "without an open marker"},
		{"unterminated block", "/** +-+\n{:graph:}\n", "ends inside an open block"},
		{"nested open", "/** +-+\n/** +-+\n-+- **/\n", "inside an open block"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render([]byte(tt.template), Tags{}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "page.html")
	graphPath := filepath.Join(dir, "scan_graph.json")
	outputPath := filepath.Join(dir, "out.html")

	template := "<script>\n/** +-+\nconst name = \"{:graph_name:}\";\nconst elements = {:graph:};\n-+- **/\n</script>\n"
	require.NoError(t, os.WriteFile(templatePath, []byte(template), 0o644))
	require.NoError(t, os.WriteFile(graphPath, []byte("[\n  {\"data\":{\"id\":\"a\"}}\n]\n"), 0o644))

	require.NoError(t, RenderFile(templatePath, graphPath, outputPath, nil))

	out, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t,
		"<script>\nconst name = \"scan_graph.json\";\nconst elements = [\n  {\"data\":{\"id\":\"a\"}}\n];\n</script>\n",
		string(out))
}

func TestRenderFileMissingInputs(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(tpl, []byte("/** +-+\n{:graph:}\n-+- **/\n"), 0o644))

	err := RenderFile(filepath.Join(dir, "missing.html"), "x", filepath.Join(dir, "out"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading template")

	err = RenderFile(tpl, filepath.Join(dir, "missing.json"), filepath.Join(dir, "out"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading graph")
}
