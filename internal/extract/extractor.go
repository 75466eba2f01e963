package extract

import (
	"strings"

	"github.com/evsys/eventlint/internal/frontend"
	"github.com/evsys/eventlint/internal/model"
)

// joinTokens renders a node's raw source tokens as one string. Event names
// and argument literals both use this; "e" "." "tick" becomes "e.tick".
func joinTokens(n *frontend.Node) string {
	return strings.Join(n.Tokens, "")
}

func (w *walker) extractPublish(call *frontend.Node, enclosing string) model.Publisher {
	p := model.Publisher{
		Args:              []model.PublishedArg{},
		Location:          call.Loc,
		Comment:           w.comments.attached(call.Loc),
		EnclosingFunction: enclosing,
	}
	if len(call.Args) == 0 {
		return p
	}
	p.EventName = joinTokens(call.Args[0])
	for _, a := range call.Args[1:] {
		p.Args = append(p.Args, model.PublishedArg{
			Literal: joinTokens(a),
			Type:    a.Type.Canonical,
		})
	}
	return p
}

func (w *walker) extractSubscribe(call *frontend.Node, enclosing string) model.Subscriber {
	s := model.Subscriber{
		Callback:          model.CallbackTarget{Kind: model.CallbackUnresolved},
		Location:          call.Loc,
		Comment:           w.comments.attached(call.Loc),
		EnclosingFunction: enclosing,
	}
	if len(call.Args) == 0 {
		return s
	}
	s.EventName = joinTokens(call.Args[0])
	for _, arg := range call.Args[1:] {
		switch arg.Kind {
		case frontend.KindCallExpr:
			// A closure arrives wrapped in the implicit std::function
			// construction; the lambda sits two levels down.
			if lam := findLambda(arg); lam != nil {
				s.Callback = closureTarget(lam)
			}
		case frontend.KindUnaryOperator:
			// &function or &Class::method. The reference's canonical type
			// is the callback alias carrying the event parameter types.
			if ref := findDeclRef(arg); ref != nil {
				s.EventType = ref.Type.Canonical
				s.Callback = declTarget(arg, ref)
			}
		}
	}
	return s
}

func findLambda(arg *frontend.Node) *frontend.Node {
	for _, p := range arg.Children {
		for _, ch := range p.Children {
			if ch.Kind == frontend.KindLambdaExpr {
				return ch
			}
		}
	}
	return nil
}

func findDeclRef(arg *frontend.Node) *frontend.Node {
	for _, ch := range arg.Children {
		if ch.Kind == frontend.KindDeclRefExpr {
			return ch
		}
	}
	return nil
}

func closureTarget(lam *frontend.Node) model.CallbackTarget {
	t := model.CallbackTarget{
		Kind:     model.CallbackClosure,
		Name:     lam.Type.Spelling,
		CallSite: lam.Loc,
		DefSite:  lam.Loc,
	}
	for _, ch := range lam.Children {
		switch ch.Kind {
		case frontend.KindParmDecl:
			t.Params = append(t.Params, model.TypedName{Name: ch.Spelling, Type: ch.Type.Canonical})
		case frontend.KindVariableRef:
			t.Captures = append(t.Captures, model.TypedName{Name: ch.Spelling, Type: ch.Type.Canonical})
		}
	}
	return t
}

func declTarget(op, ref *frontend.Node) model.CallbackTarget {
	decl := ref.Ref
	if decl == nil {
		return model.CallbackTarget{Kind: model.CallbackUnresolved, CallSite: op.Loc}
	}
	t := model.CallbackTarget{
		CallSite: op.Loc,
		DefSite:  decl.Loc,
		Comment:  decl.RawComment,
	}
	switch decl.Kind {
	case frontend.KindCXXMethod:
		t.Kind = model.CallbackClassMethod
		t.Name = qualifiedName(decl)
	case frontend.KindFunctionDecl:
		t.Kind = model.CallbackFreeFunction
		t.Name = decl.Spelling
	default:
		return model.CallbackTarget{Kind: model.CallbackUnresolved, CallSite: op.Loc}
	}
	return t
}

func qualifiedName(decl *frontend.Node) string {
	if decl.SemParent != nil && decl.SemParent.Type.Spelling != "" {
		return decl.SemParent.Type.Spelling + "::" + decl.Spelling
	}
	return decl.Spelling
}

func (w *walker) extractRegister(call *frontend.Node, enclosing string) model.Registrar {
	r := model.Registrar{
		Location:          call.Loc,
		Comment:           w.comments.attached(call.Loc),
		EnclosingFunction: enclosing,
	}
	// registerEvent takes exactly one argument; tolerate extras by letting
	// the last one win rather than dropping the record.
	for _, a := range call.Args {
		r.EventName = joinTokens(a)
	}
	// The result type names the event's subscriber collection. Its canonical
	// form resolves any typedef or using alias back to the instantiated
	// template, which carries the declared parameter types.
	r.Params = model.SplitCollectionTypes(call.Type.Canonical, w.opts.Match.CollectionType)
	if r.Params == nil {
		r.Params = []string{}
	}
	return r
}
