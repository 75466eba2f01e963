package model

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var documentSchema string

var (
	schemaOnce  sync.Once
	schemaValue cue.Value
	schemaErr   error
)

func compiledSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		schemaValue = ctx.CompileString(documentSchema)
		schemaErr = schemaValue.Err()
	})
	return schemaValue, schemaErr
}

// ValidateDocumentBytes checks raw JSON against the scan document schema.
// The error carries CUE's path-qualified detail for the first violations.
func ValidateDocumentBytes(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling document schema: %w", err)
	}
	if err := cuejson.Validate(data, schema); err != nil {
		return fmt.Errorf("scan document failed schema validation: %w", err)
	}
	return nil
}
