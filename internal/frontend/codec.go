package frontend

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads one dumped syntax tree. The root must be a translation
// unit; anything else means the dumper and this reader disagree about the
// contract, which is not recoverable.
func Decode(r io.Reader) (*Node, error) {
	var root Node
	dec := json.NewDecoder(bufio.NewReader(r))
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decoding syntax tree: %w", err)
	}
	if root.Kind != KindTranslationUnit {
		return nil, fmt.Errorf("syntax tree root is %s, want TranslationUnit", root.Kind)
	}
	return &root, nil
}
