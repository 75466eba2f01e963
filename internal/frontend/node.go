package frontend

import (
	"encoding/json"

	"github.com/evsys/eventlint/internal/model"
)

// NodeKind identifies a syntax tree node. The set is closed; unknown wire
// spellings decode to KindUnknown.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindTranslationUnit
	KindFunctionDecl
	KindConstructor
	KindCXXMethod
	KindCallExpr
	KindLambdaExpr
	KindUnaryOperator
	KindDeclRefExpr
	KindMemberRefExpr
	KindVariableRef
	KindParmDecl
)

var kindNames = map[NodeKind]string{
	KindTranslationUnit: "TranslationUnit",
	KindFunctionDecl:    "FunctionDecl",
	KindConstructor:     "Constructor",
	KindCXXMethod:       "CXXMethod",
	KindCallExpr:        "CallExpr",
	KindLambdaExpr:      "LambdaExpr",
	KindUnaryOperator:   "UnaryOperator",
	KindDeclRefExpr:     "DeclRefExpr",
	KindMemberRefExpr:   "MemberRefExpr",
	KindVariableRef:     "VariableRef",
	KindParmDecl:        "ParmDecl",
}

var kindValues = func() map[string]NodeKind {
	m := make(map[string]NodeKind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

func (k NodeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

func (k NodeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *NodeKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*k = kindValues[name]
	return nil
}

// TypeInfo carries both spellings of a node's type. Spelling is the type as
// written at the use site; Canonical has aliases and sugar resolved.
type TypeInfo struct {
	Spelling  string `json:"spelling,omitempty"`
	Canonical string `json:"canonical,omitempty"`
}

// Node is one syntax tree node as the dumper reports it.
//
// Args duplicates the argument subtrees of a CallExpr that also appear in
// Children, mirroring how the parser exposes call arguments as a filtered
// child view. Traversal must follow Children only, so every node is seen
// once; extraction reads Args directly off matched calls.
type Node struct {
	Kind       NodeKind             `json:"kind"`
	Spelling   string               `json:"spelling,omitempty"`
	Loc        model.SourceLocation `json:"loc"`
	Type       TypeInfo             `json:"type"`
	Tokens     []string             `json:"tokens,omitempty"`
	Args       []*Node              `json:"args,omitempty"`
	Children   []*Node              `json:"children,omitempty"`
	Ref        *Node                `json:"ref,omitempty"`
	SemParent  *Node                `json:"sem_parent,omitempty"`
	RawComment string               `json:"raw_comment,omitempty"`
}
