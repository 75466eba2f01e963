package extract

import (
	"strings"

	"github.com/evsys/eventlint/internal/frontend"
	"github.com/evsys/eventlint/internal/model"
)

// Options configures one unit's extraction.
type Options struct {
	// ProjectRoot is a path fragment a node's file must contain to be
	// considered. Empty admits everything, including system headers.
	ProjectRoot string
	// Match selects the event API types. Zero value matches nothing;
	// use DefaultMatchConfig.
	Match MatchConfig
	// ReadFile overrides source access for comment attachment.
	// Defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

// Result is every record found in one translation unit, in visitation
// order. Slices are always non-nil so results merge into documents without
// null checks.
type Result struct {
	Publishers  []model.Publisher
	Subscribers []model.Subscriber
	Registrars  []model.Registrar
	DirectCalls []model.DirectCall
}

// WalkUnit extracts all event API call records from one dumped tree. All
// state is local to the call; units can be walked concurrently as long as
// each walk gets its own Result.
func WalkUnit(root *frontend.Node, opts Options) Result {
	w := &walker{
		opts:     opts,
		comments: newCommentScanner(opts.ReadFile),
		res: Result{
			Publishers:  []model.Publisher{},
			Subscribers: []model.Subscriber{},
			Registrars:  []model.Registrar{},
			DirectCalls: []model.DirectCall{},
		},
	}
	if root != nil {
		for _, c := range root.Children {
			w.walk(c, "")
		}
	}
	return w.res
}

type walker struct {
	opts     Options
	comments *commentScanner
	res      Result
}

// walk visits preorder, carrying the name of the innermost enclosing
// function declaration. Filtered nodes are skipped but their subtrees are
// not: a template instantiated from a system header can still contain
// project calls.
func (w *walker) walk(n *frontend.Node, enclosing string) {
	if n == nil {
		return
	}
	if w.includes(n) {
		switch n.Kind {
		case frontend.KindFunctionDecl, frontend.KindConstructor, frontend.KindCXXMethod:
			if n.Spelling != "" {
				enclosing = n.Spelling
			}
		case frontend.KindCallExpr:
			if kind, ok := matchCall(n, w.opts.Match); ok {
				w.record(kind, n, enclosing)
			}
		}
	}
	for _, c := range n.Children {
		w.walk(c, enclosing)
	}
}

func (w *walker) includes(n *frontend.Node) bool {
	if n.Loc.File == "" {
		return false
	}
	return w.opts.ProjectRoot == "" || strings.Contains(n.Loc.File, w.opts.ProjectRoot)
}

func (w *walker) record(kind model.CallKind, call *frontend.Node, enclosing string) {
	switch kind {
	case model.KindPublish:
		w.res.Publishers = append(w.res.Publishers, w.extractPublish(call, enclosing))
	case model.KindSubscribe:
		w.res.Subscribers = append(w.res.Subscribers, w.extractSubscribe(call, enclosing))
	case model.KindRegister:
		w.res.Registrars = append(w.res.Registrars, w.extractRegister(call, enclosing))
	case model.KindDirectCall:
		w.res.DirectCalls = append(w.res.DirectCalls, model.DirectCall{Location: call.Loc})
	}
}
