package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCommandPasses(t *testing.T) {
	disableColor(t)
	path := writeScanDoc(t, cleanDoc())

	out, _, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Event validation PASSED")
}

func TestCheckCommandFailsOnMismatch(t *testing.T) {
	disableColor(t)
	path := writeScanDoc(t, mismatchDoc())

	out, _, err := execute(t, "check", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Event signature mismatch for: score.changed")
	assert.Contains(t, out, "<float>")
	assert.Contains(t, out, "<int>")
	assert.Contains(t, out, "Event validation FAILED")
}

func TestCheckCommandMissingDocument(t *testing.T) {
	out, _, err := execute(t, "check", "no-such-scan.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestCheckCommandMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version":99}`), 0o644))

	out, _, err := execute(t, "check", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err), "malformed input fails the check, not the command")
	assert.Contains(t, out, ErrCodeBadDocument)
}

func TestCheckCommandJSONPassed(t *testing.T) {
	path := writeScanDoc(t, cleanDoc())

	out, _, err := execute(t, "--format", "json", "check", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["passed"])
	assert.Equal(t, float64(1), data["events"])
}

func TestCheckCommandJSONFailed(t *testing.T) {
	path := writeScanDoc(t, mismatchDoc())

	out, _, err := execute(t, "--format", "json", "check", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "mismatched signatures")

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["passed"])
	mismatched, ok := data["mismatched"].([]interface{})
	require.True(t, ok)
	require.Len(t, mismatched, 1)
}
