package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/evsys/eventlint/internal/model"
)

// Error codes for CLI output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Input path not found
	ErrCodeBadDocument = "E003" // Scan document failed schema validation
	ErrCodeWriteFailed = "E004" // File write error
	ErrCodeScanFailed  = "E005" // Scan run error
	ErrCodeStoreFailed = "E006" // History database error
	ErrCodeGraphFailed = "E007" // Graph database error
)

// LoadError represents an error that occurred while reading inputs.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// loadDocument reads and validates a scan document. Schema violations are
// fatal; records without event names are dropped with a warning and the
// document stays usable.
func loadDocument(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading scan document: %v", err)}
	}
	doc, err := model.DecodeDocument(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadDocument, Message: fmt.Sprintf("invalid scan document %s: %v", path, err)}
	}
	doc.DropInvalid(func(format string, args ...any) {
		slog.Warn(fmt.Sprintf(format, args...))
	})
	return doc, nil
}
