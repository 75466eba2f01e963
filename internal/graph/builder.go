// Package graph converts scan documents into a visualization-ready
// element list (cytoscape data/classes entries) and can mirror the same
// relationships into a Neo4j database.
//
// Nodes are one compound group per event name, one leaf per call site,
// and one sink per distinct resolved callback target. Edges are the full
// cross product of correlated roles per event, so every inconsistent
// pairing is visible, not just one representative.
package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/evsys/eventlint/internal/model"
)

// Element is one graph entry, node or edge.
type Element struct {
	Data    ElementData `json:"data"`
	Classes string      `json:"classes,omitempty"`
}

// ElementData carries the id plus the fields its element kind uses:
// call-site nodes fill position and attribution, sink nodes fill the
// callback identity, edges fill source and target.
type ElementData struct {
	ID        string `json:"id"`
	Parent    string `json:"parent,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Name      string `json:"name,omitempty"`
	EventName string `json:"eventName,omitempty"`
	Signature string `json:"signature,omitempty"`
	Comments  string `json:"comments,omitempty"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
	Column    int    `json:"column,omitempty"`
	Function  string `json:"function,omitempty"`
	Params    string `json:"params,omitempty"`
	Captures  string `json:"captures,omitempty"`
	Source    string `json:"source,omitempty"`
	Target    string `json:"target,omitempty"`
}

const (
	classGroup        = "group"
	classCallback     = "callback"
	classCallbackEdge = "callbackfncall"
	classRegistration = "registration"
	classMismatch     = "signaturemismatch"
)

// siteID keys a call-site node. Column is part of the id so two calls on
// one line stay distinct.
func siteID(l model.SourceLocation) string {
	return fmt.Sprintf("%s: %d::%d", l.File, l.Line, l.Column)
}

// sinkKindName maps a callback kind to its display spelling.
func sinkKindName(kind model.CallbackKind) string {
	switch kind {
	case model.CallbackFreeFunction:
		return "FreeFunction"
	case model.CallbackClassMethod:
		return "ClassMethod"
	case model.CallbackClosure:
		return "lambda"
	}
	return "unresolved"
}

// sinkID keys a callback sink node by kind, name, and definition site,
// stable across rescans of unmodified source.
func sinkID(cb model.CallbackTarget) string {
	return fmt.Sprintf("sink_%s_%s_%s:%d",
		sinkKindName(cb.Kind), cb.Name, cb.DefSite.File, cb.DefSite.Line)
}

type siteRef struct {
	id  string
	sig model.Signature
}

type builder struct {
	elements []Element
	nodes    map[string]bool
	groups   map[string]bool
	sinks    map[string]bool
	warnf    func(string, ...any)
}

// Build converts a scan document into graph elements. Subscribers are
// laid down first so their nodes exist when publisher and registrar
// cross-product edges are generated; group nodes appear when their event
// is first seen. Records without an event name, and subscribers without
// a usable site, are skipped with a diagnostic.
func Build(doc *model.Document, warnf func(format string, args ...any)) []Element {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	b := &builder{
		elements: []Element{},
		nodes:    map[string]bool{},
		groups:   map[string]bool{},
		sinks:    map[string]bool{},
		warnf:    warnf,
	}

	subs := map[string][]siteRef{}
	pubs := map[string][]siteRef{}

	for _, s := range doc.Subscribers {
		if s.EventName == "" {
			b.warnf("dropping subscriber without an event name at %s", s.Location)
			continue
		}
		site := s.Site()
		if site.IsZero() {
			b.warnf("subscriber for %q has no usable call site, skipping", s.EventName)
			continue
		}
		id := siteID(site)
		b.group(s.EventName)
		b.node(Element{Data: ElementData{
			ID:        id,
			Parent:    s.EventName,
			Kind:      model.KindSubscribe.String(),
			EventName: s.EventName,
			Signature: string(s.Signature()),
			Comments:  s.Comment,
			File:      site.File,
			Line:      site.Line,
			Column:    site.Column,
			Function:  s.EnclosingFunction,
		}, Classes: model.KindSubscribe.String()})
		subs[s.EventName] = append(subs[s.EventName], siteRef{id: id, sig: s.Signature()})
		if s.Callback.Resolved() {
			b.sink(s.Callback)
			b.edge(id, sinkID(s.Callback), s.EventName, classCallbackEdge)
		}
	}

	for _, p := range doc.Publishers {
		if p.EventName == "" {
			b.warnf("dropping publisher without an event name at %s", p.Location)
			continue
		}
		id := siteID(p.Location)
		sig := p.Signature()
		b.group(p.EventName)
		b.node(Element{Data: ElementData{
			ID:        id,
			Parent:    p.EventName,
			Kind:      model.KindPublish.String(),
			EventName: p.EventName,
			Signature: string(sig),
			Comments:  p.Comment,
			File:      p.Location.File,
			Line:      p.Location.Line,
			Column:    p.Location.Column,
			Function:  p.EnclosingFunction,
		}, Classes: model.KindPublish.String()})
		for _, sn := range subs[p.EventName] {
			classes := ""
			if sn.sig != sig {
				classes = classMismatch
			}
			b.edge(id, sn.id, p.EventName, classes)
		}
		pubs[p.EventName] = append(pubs[p.EventName], siteRef{id: id, sig: sig})
	}

	for _, r := range doc.Registrars {
		if r.EventName == "" {
			b.warnf("dropping registrar without an event name at %s", r.Location)
			continue
		}
		id := siteID(r.Location)
		sig := r.Signature()
		b.group(r.EventName)
		b.node(Element{Data: ElementData{
			ID:        id,
			Parent:    r.EventName,
			Kind:      model.KindRegister.String(),
			EventName: r.EventName,
			Signature: string(sig),
			Comments:  r.Comment,
			File:      r.Location.File,
			Line:      r.Location.Line,
			Column:    r.Location.Column,
			Function:  r.EnclosingFunction,
		}, Classes: model.KindRegister.String()})
		for _, sn := range subs[r.EventName] {
			b.edge(id, sn.id, r.EventName, registrationClasses(sn.sig != sig))
		}
		for _, pn := range pubs[r.EventName] {
			b.edge(id, pn.id, r.EventName, registrationClasses(pn.sig != sig))
		}
	}

	return b.elements
}

// registrationClasses renders the space-joined class tokens of a
// registrar correlation edge.
func registrationClasses(mismatched bool) string {
	if mismatched {
		return classRegistration + " " + classMismatch
	}
	return classRegistration
}

func (b *builder) group(event string) {
	if b.groups[event] {
		return
	}
	b.groups[event] = true
	b.elements = append(b.elements, Element{
		Data:    ElementData{ID: event, Name: event},
		Classes: classGroup,
	})
}

func (b *builder) node(el Element) {
	if b.nodes[el.Data.ID] {
		b.warnf("duplicate call site id %s, keeping the first node", el.Data.ID)
		return
	}
	b.nodes[el.Data.ID] = true
	b.elements = append(b.elements, el)
}

func (b *builder) sink(cb model.CallbackTarget) {
	id := sinkID(cb)
	if b.sinks[id] {
		return
	}
	b.sinks[id] = true
	el := Element{Data: ElementData{
		ID:   id,
		Kind: sinkKindName(cb.Kind),
		Name: cb.Name,
		File: cb.DefSite.File,
		Line: cb.DefSite.Line,
	}, Classes: classCallback}
	if cb.Kind == model.CallbackClosure {
		el.Data.Params = joinTyped(cb.Params)
		el.Data.Captures = joinTyped(cb.Captures)
	}
	b.elements = append(b.elements, el)
}

func (b *builder) edge(source, target, event, classes string) {
	b.elements = append(b.elements, Element{
		Data: ElementData{
			ID:        source + "__" + target,
			EventName: event,
			Source:    source,
			Target:    target,
		},
		Classes: classes,
	})
}

func joinTyped(vars []model.TypedName) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = strings.TrimSpace(v.Type + " " + v.Name)
	}
	return strings.Join(parts, ", ")
}

// Encode writes elements as an indented JSON array. Angle brackets in
// type names stay unescaped.
func Encode(w io.Writer, elems []Element) error {
	if elems == nil {
		elems = []Element{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(elems)
}
