package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/evsys/eventlint/internal/model"
)

// execute runs the root command with args and returns stdout, stderr, and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// disableColor forces plain report output for the test's duration.
func disableColor(t *testing.T) {
	t.Helper()
	restore := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = restore })
}

// writeScanDoc encodes doc into a temp dir and returns the file path.
func writeScanDoc(t *testing.T, doc *model.Document) string {
	t.Helper()
	data, err := doc.Encode()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "scan.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// cleanDoc is a document whose single event agrees on "float" everywhere.
func cleanDoc() *model.Document {
	doc := model.NewDocument()
	doc.Publishers = append(doc.Publishers, model.Publisher{
		EventName: "score.changed",
		Args:      []model.PublishedArg{{Literal: "delta", Type: "float"}},
		Location:  model.SourceLocation{File: "src/game.cpp", Line: 40, Column: 9},
	})
	doc.Subscribers = append(doc.Subscribers, model.Subscriber{
		EventName: "score.changed",
		EventType: "void (float)",
		Callback: model.CallbackTarget{
			Kind:     model.CallbackFreeFunction,
			Name:     "onScore",
			CallSite: model.SourceLocation{File: "src/hud.cpp", Line: 33, Column: 30},
			DefSite:  model.SourceLocation{File: "src/hud.cpp", Line: 90, Column: 1},
		},
		Location: model.SourceLocation{File: "src/hud.cpp", Line: 33, Column: 12},
	})
	return doc
}

// mismatchDoc is cleanDoc with the subscriber expecting "int" instead.
func mismatchDoc() *model.Document {
	doc := cleanDoc()
	doc.Subscribers[0].EventType = "void (int)"
	return doc
}
