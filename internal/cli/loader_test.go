package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evsys/eventlint/internal/model"
)

func TestLoadDocument(t *testing.T) {
	path := writeScanDoc(t, cleanDoc())

	doc, err := loadDocument(path)
	require.NoError(t, err)
	require.Len(t, doc.Publishers, 1)
	assert.Equal(t, "score.changed", doc.Publishers[0].EventName)
}

func TestLoadDocumentMissing(t *testing.T) {
	_, err := loadDocument(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadDocumentRejectsBadSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version": 99}`), 0o644))

	_, err := loadDocument(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeBadDocument, loadErr.Code)
	assert.Contains(t, loadErr.Message, "scan.json")
}

func TestLoadDocumentDropsUnnamedRecords(t *testing.T) {
	doc := cleanDoc()
	doc.Publishers = append(doc.Publishers, model.Publisher{
		EventName: "",
		Args:      []model.PublishedArg{},
		Location:  model.SourceLocation{File: "src/bad.cpp", Line: 3, Column: 1},
	})
	path := writeScanDoc(t, doc)

	loaded, err := loadDocument(path)
	require.NoError(t, err)
	require.Len(t, loaded.Publishers, 1)
	assert.Equal(t, "score.changed", loaded.Publishers[0].EventName)
}
