package extract

import (
	"strings"

	"github.com/evsys/eventlint/internal/frontend"
	"github.com/evsys/eventlint/internal/model"
)

// MatchConfig names the C++ types whose calls are event API calls.
type MatchConfig struct {
	// SystemType declares subscribe, publish, and registerEvent.
	SystemType string
	// CollectionType declares the direct call() entry point.
	CollectionType string
}

// DefaultMatchConfig matches the stock ES event system.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		SystemType:     "ES::EventSystem",
		CollectionType: "ES::SubscriberCollection",
	}
}

// matchCall decides whether a call expression is an event API call. The
// spelling alone is not enough; the callee's class type must match, or a
// user-defined publish() would slip in.
func matchCall(n *frontend.Node, cfg MatchConfig) (model.CallKind, bool) {
	var (
		kind model.CallKind
		want string
	)
	switch n.Spelling {
	case "publish":
		kind, want = model.KindPublish, cfg.SystemType
	case "subscribe":
		kind, want = model.KindSubscribe, cfg.SystemType
	case "registerEvent":
		kind, want = model.KindRegister, cfg.SystemType
	case "call":
		kind, want = model.KindDirectCall, cfg.CollectionType
	default:
		return 0, false
	}
	if want == "" || !calleeClassMatches(n, want) {
		return 0, false
	}
	return kind, true
}

// calleeClassMatches checks the callee's class by prefix, after stripping
// cv-qualification. Template instantiations of the class still match;
// wrappers holding it as a type argument do not.
func calleeClassMatches(n *frontend.Node, typeName string) bool {
	if n.Ref == nil || n.Ref.SemParent == nil {
		return false
	}
	cls := strings.TrimPrefix(n.Ref.SemParent.Type.Spelling, "const ")
	return strings.HasPrefix(cls, typeName)
}
