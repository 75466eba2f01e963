package model

import "fmt"

// CallKind identifies which event-system entry point a record came from.
// The set is closed; switches over it handle every constant.
type CallKind int

const (
	KindPublish CallKind = iota + 1
	KindSubscribe
	KindRegister
	KindDirectCall
)

// String returns the API spelling of the call, as written in source.
func (k CallKind) String() string {
	switch k {
	case KindPublish:
		return "publish"
	case KindSubscribe:
		return "subscribe"
	case KindRegister:
		return "registerEvent"
	case KindDirectCall:
		return "call"
	default:
		return fmt.Sprintf("CallKind(%d)", int(k))
	}
}

// CallbackKind discriminates the resolved target of a subscriber callback.
type CallbackKind string

const (
	CallbackFreeFunction CallbackKind = "free_function"
	CallbackClassMethod  CallbackKind = "class_method"
	CallbackClosure      CallbackKind = "closure"
	CallbackUnresolved   CallbackKind = "unresolved"
)

// TypedName is a name paired with a canonical type spelling. Used for
// closure captures and closure parameters.
type TypedName struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CallbackTarget describes what a subscribe call handed over as its
// callback. Kind selects which of the remaining fields are meaningful:
//
//	free_function  Name, CallSite, DefSite, Comment
//	class_method   Name (qualified), CallSite, DefSite, Comment
//	closure        Name (closure type), CallSite, DefSite, Captures, Params
//	unresolved     CallSite at best; the argument shape was not recognized
type CallbackTarget struct {
	Kind     CallbackKind   `json:"kind"`
	Name     string         `json:"name,omitempty"`
	CallSite SourceLocation `json:"call_site"`
	DefSite  SourceLocation `json:"def_site"`
	Comment  string         `json:"comment,omitempty"`
	Captures []TypedName    `json:"captures,omitempty"`
	Params   []TypedName    `json:"params,omitempty"`
}

// Resolved reports whether the target names an actual callable.
func (t CallbackTarget) Resolved() bool {
	return t.Kind == CallbackFreeFunction || t.Kind == CallbackClassMethod || t.Kind == CallbackClosure
}

// Identity keys a target for deduplication. Two subscribers handing over the
// same function produce one identity even when the subscribe calls differ.
func (t CallbackTarget) Identity() string {
	return fmt.Sprintf("%s_%s_%s:%d", t.Kind, t.Name, t.DefSite.File, t.DefSite.Line)
}

// PublishedArg is one argument of a publish call after the event name:
// its source literal and its canonical type.
type PublishedArg struct {
	Literal string `json:"literal"`
	Type    string `json:"type"`
}

// Publisher records one publish call.
type Publisher struct {
	EventName         string         `json:"event_name"`
	Args              []PublishedArg `json:"args"`
	Location          SourceLocation `json:"location"`
	Comment           string         `json:"comment,omitempty"`
	EnclosingFunction string         `json:"enclosing_function,omitempty"`
}

// Subscriber records one subscribe call. EventType holds the canonical
// "void (...)" alias type when the callback argument was a reference to a
// declared function or method; closures carry their parameter types on the
// callback target instead.
type Subscriber struct {
	EventName         string         `json:"event_name"`
	EventType         string         `json:"event_type,omitempty"`
	Callback          CallbackTarget `json:"callback"`
	Location          SourceLocation `json:"location"`
	Comment           string         `json:"comment,omitempty"`
	EnclosingFunction string         `json:"enclosing_function,omitempty"`
}

// Registrar records one registerEvent call. Params are the type spellings
// registered for the event, split from the call's collection result type.
type Registrar struct {
	EventName         string         `json:"event_name"`
	Params            []string       `json:"params"`
	Location          SourceLocation `json:"location"`
	Comment           string         `json:"comment,omitempty"`
	EnclosingFunction string         `json:"enclosing_function,omitempty"`
}

// DirectCall records one direct invocation through a subscriber collection.
// Direct calls carry no event name and no signature; they are counted, not
// checked.
type DirectCall struct {
	Location SourceLocation `json:"location"`
}

// CallRecord is the view of a record the checker and graph builder need:
// its kind, event, canonical signature, reporting site, and any comment
// attached at the call.
type CallRecord interface {
	Kind() CallKind
	Event() string
	Signature() Signature
	Site() SourceLocation
	AttachedComment() string
}

func (p Publisher) Kind() CallKind { return KindPublish }

func (p Publisher) Event() string { return p.EventName }

func (p Publisher) Site() SourceLocation { return p.Location }

func (p Publisher) AttachedComment() string { return p.Comment }

// Signature of a publisher is the canonical types of the published
// arguments, in call order.
func (p Publisher) Signature() Signature {
	types := make([]string, len(p.Args))
	for i, a := range p.Args {
		types[i] = a.Type
	}
	return CanonicalSignature(types)
}

func (s Subscriber) Kind() CallKind { return KindSubscribe }

func (s Subscriber) Event() string { return s.EventName }

func (s Subscriber) AttachedComment() string { return s.Comment }

// Site prefers the callback argument's position over the subscribe call
// itself; the argument is where a reader looks for the handler.
func (s Subscriber) Site() SourceLocation {
	if s.Callback.Resolved() && !s.Callback.CallSite.IsZero() {
		return s.Callback.CallSite
	}
	return s.Location
}

// Signature of a subscriber comes from the callback alias type when one was
// captured, then from closure parameter types, and is SignatureError when
// neither is available.
func (s Subscriber) Signature() Signature {
	if s.EventType != "" {
		return SignatureFromAlias(s.EventType)
	}
	if s.Callback.Kind == CallbackClosure {
		types := make([]string, len(s.Callback.Params))
		for i, p := range s.Callback.Params {
			types[i] = p.Type
		}
		return CanonicalSignature(types)
	}
	return SignatureError
}

func (r Registrar) Kind() CallKind { return KindRegister }

func (r Registrar) Event() string { return r.EventName }

func (r Registrar) Site() SourceLocation { return r.Location }

func (r Registrar) AttachedComment() string { return r.Comment }

// Signature of a registrar is the canonical join of its registered types.
func (r Registrar) Signature() Signature {
	return CanonicalSignature(r.Params)
}
