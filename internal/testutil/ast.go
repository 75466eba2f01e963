package testutil

import (
	"fmt"

	"github.com/evsys/eventlint/internal/frontend"
	"github.com/evsys/eventlint/internal/model"
)

// Loc builds a source location.
func Loc(file string, line, col int) model.SourceLocation {
	return model.SourceLocation{File: file, Line: line, Column: col}
}

// TU wraps children in a translation unit root.
func TU(children ...*frontend.Node) *frontend.Node {
	return &frontend.Node{Kind: frontend.KindTranslationUnit, Children: children}
}

// Fn builds a function declaration containing the given nodes.
func Fn(name string, loc model.SourceLocation, children ...*frontend.Node) *frontend.Node {
	return &frontend.Node{
		Kind:     frontend.KindFunctionDecl,
		Spelling: name,
		Loc:      loc,
		Children: children,
	}
}

// Method builds a method declaration containing the given nodes.
func Method(name string, loc model.SourceLocation, children ...*frontend.Node) *frontend.Node {
	return &frontend.Node{
		Kind:     frontend.KindCXXMethod,
		Spelling: name,
		Loc:      loc,
		Children: children,
	}
}

// EventCall builds a call expression whose referenced declaration belongs
// to a class with the given type spelling. Arguments double as children so
// a traversal reaches nodes nested inside them.
func EventCall(name, parentType string, loc model.SourceLocation, args ...*frontend.Node) *frontend.Node {
	return &frontend.Node{
		Kind:     frontend.KindCallExpr,
		Spelling: name,
		Loc:      loc,
		Ref: &frontend.Node{
			Kind:     frontend.KindCXXMethod,
			Spelling: name,
			SemParent: &frontend.Node{
				Type: frontend.TypeInfo{Spelling: parentType, Canonical: parentType},
			},
		},
		Args:     args,
		Children: args,
	}
}

// NameArg builds an event-name argument from its raw source tokens.
func NameArg(loc model.SourceLocation, tokens ...string) *frontend.Node {
	return &frontend.Node{Kind: frontend.KindUnknown, Loc: loc, Tokens: tokens}
}

// ValueArg builds a published-value argument with a literal and its
// canonical type.
func ValueArg(loc model.SourceLocation, literal, canonicalType string) *frontend.Node {
	return &frontend.Node{
		Kind:   frontend.KindUnknown,
		Loc:    loc,
		Tokens: []string{literal},
		Type:   frontend.TypeInfo{Spelling: canonicalType, Canonical: canonicalType},
	}
}

// FnRef builds a callback argument referencing a free function: the
// address-of operator over a declaration reference.
func FnRef(argLoc model.SourceLocation, aliasType string, decl *frontend.Node) *frontend.Node {
	return &frontend.Node{
		Kind: frontend.KindUnaryOperator,
		Loc:  argLoc,
		Children: []*frontend.Node{
			{
				Kind:     frontend.KindDeclRefExpr,
				Spelling: declSpelling(decl),
				Loc:      argLoc,
				Type:     frontend.TypeInfo{Spelling: aliasType, Canonical: aliasType},
				Ref:      decl,
			},
		},
	}
}

func declSpelling(decl *frontend.Node) string {
	if decl == nil {
		return ""
	}
	return decl.Spelling
}

// FnDecl builds a free-function declaration node for use as a callback
// referent.
func FnDecl(name string, loc model.SourceLocation, rawComment string) *frontend.Node {
	return &frontend.Node{
		Kind:       frontend.KindFunctionDecl,
		Spelling:   name,
		Loc:        loc,
		RawComment: rawComment,
	}
}

// MethodDecl builds a class-method declaration node for use as a callback
// referent.
func MethodDecl(class, name string, loc model.SourceLocation, rawComment string) *frontend.Node {
	return &frontend.Node{
		Kind:       frontend.KindCXXMethod,
		Spelling:   name,
		Loc:        loc,
		RawComment: rawComment,
		SemParent: &frontend.Node{
			Type: frontend.TypeInfo{Spelling: class, Canonical: class},
		},
	}
}

// LambdaArg builds a callback argument wrapping a closure: the implicit
// conversion call with the lambda expression two levels below, as the
// parser reports std::function construction.
func LambdaArg(lambda *frontend.Node) *frontend.Node {
	return &frontend.Node{
		Kind: frontend.KindCallExpr,
		Loc:  lambda.Loc,
		Children: []*frontend.Node{
			{Kind: frontend.KindUnknown, Loc: lambda.Loc, Children: []*frontend.Node{lambda}},
		},
	}
}

// Lambda builds a closure node with the given parameters and captures.
func Lambda(loc model.SourceLocation, params, captures []model.TypedName) *frontend.Node {
	n := &frontend.Node{
		Kind: frontend.KindLambdaExpr,
		Loc:  loc,
		Type: frontend.TypeInfo{
			Spelling: fmt.Sprintf("(lambda at %s)", loc),
		},
	}
	for _, p := range params {
		n.Children = append(n.Children, &frontend.Node{
			Kind:     frontend.KindParmDecl,
			Spelling: p.Name,
			Loc:      loc,
			Type:     frontend.TypeInfo{Spelling: p.Type, Canonical: p.Type},
		})
	}
	for _, c := range captures {
		n.Children = append(n.Children, &frontend.Node{
			Kind:     frontend.KindVariableRef,
			Spelling: c.Name,
			Loc:      loc,
			Type:     frontend.TypeInfo{Spelling: c.Type, Canonical: c.Type},
		})
	}
	return n
}
