package frontend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dumpFixture = `{
  "kind": "TranslationUnit",
  "loc": {"file": "/src/main.cpp", "line": 0, "column": 0},
  "type": {},
  "children": [
    {
      "kind": "FunctionDecl",
      "spelling": "main",
      "loc": {"file": "/src/main.cpp", "line": 10, "column": 1},
      "type": {"spelling": "int ()", "canonical": "int ()"},
      "children": [
        {
          "kind": "CallExpr",
          "spelling": "publish",
          "loc": {"file": "/src/main.cpp", "line": 12, "column": 8},
          "type": {"spelling": "void", "canonical": "void"},
          "ref": {
            "kind": "CXXMethod",
            "spelling": "publish",
            "loc": {"file": "/src/EventSystem.h", "line": 40, "column": 3},
            "type": {},
            "sem_parent": {
              "kind": "Unknown",
              "loc": {"file": "/src/EventSystem.h", "line": 20, "column": 1},
              "type": {"spelling": "ES::EventSystem", "canonical": "ES::EventSystem"}
            }
          },
          "args": [
            {
              "kind": "Unknown",
              "loc": {"file": "/src/main.cpp", "line": 12, "column": 16},
              "type": {"spelling": "const char *", "canonical": "const char *"},
              "tokens": ["\"e.tick\""]
            }
          ]
        }
      ]
    }
  ]
}`

func TestDecode(t *testing.T) {
	root, err := Decode(strings.NewReader(dumpFixture))
	require.NoError(t, err)

	assert.Equal(t, KindTranslationUnit, root.Kind)
	require.Len(t, root.Children, 1)

	fn := root.Children[0]
	assert.Equal(t, KindFunctionDecl, fn.Kind)
	assert.Equal(t, "main", fn.Spelling)

	require.Len(t, fn.Children, 1)
	call := fn.Children[0]
	assert.Equal(t, KindCallExpr, call.Kind)
	assert.Equal(t, 12, call.Loc.Line)
	require.NotNil(t, call.Ref)
	assert.Equal(t, "ES::EventSystem", call.Ref.SemParent.Type.Spelling)
	require.Len(t, call.Args, 1)
	assert.Equal(t, []string{"\"e.tick\""}, call.Args[0].Tokens)
}

func TestDecodeRejectsNonUnitRoot(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"kind": "CallExpr", "loc": {"file":"a","line":1,"column":1}, "type": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TranslationUnit")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("not a tree"))
	assert.Error(t, err)
}
