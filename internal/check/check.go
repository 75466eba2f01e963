// Package check verifies that every event is published, subscribed, and
// registered with one agreed signature, and renders the mismatch report.
package check

import (
	"sort"

	"github.com/evsys/eventlint/internal/model"
)

// Group is one signature and every record that uses it for an event.
type Group struct {
	Signature model.Signature
	Members   []model.CallRecord
}

// EventReport is one event whose records disagree. Groups are ordered by
// ascending member count, so the outliers most likely to be the bug come
// first; equal counts keep first-seen order.
type EventReport struct {
	Event  string
	Groups []Group
}

// Result of analyzing one scan document.
type Result struct {
	// Events is the number of distinct events checked.
	Events int
	// Mismatched lists conflicting events in first-seen order.
	Mismatched []EventReport
}

// Failed reports whether the document should fail validation.
func (r Result) Failed() bool { return len(r.Mismatched) > 0 }

// Analyze groups every event's records by canonical signature. An event
// with more than one distinct signature is a mismatch; SignatureError and
// SignatureVoid are ordinary values here, so extraction failures and
// empty parameter lists surface instead of hiding.
func Analyze(doc *model.Document) Result {
	var order []string
	seen := map[string]bool{}
	note := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	for _, p := range doc.Publishers {
		note(p.EventName)
	}
	for _, s := range doc.Subscribers {
		note(s.EventName)
	}
	for _, r := range doc.Registrars {
		note(r.EventName)
	}

	res := Result{Events: len(order)}
	for _, event := range order {
		groups := collectGroups(doc, event)
		if len(groups) <= 1 {
			continue
		}
		sort.SliceStable(groups, func(i, j int) bool {
			return len(groups[i].Members) < len(groups[j].Members)
		})
		res.Mismatched = append(res.Mismatched, EventReport{Event: event, Groups: groups})
	}
	return res
}

// collectGroups buckets an event's records by signature. Registrars are
// added first so the declared signature leads its group's member list,
// then publishers, then subscribers.
func collectGroups(doc *model.Document, event string) []Group {
	index := map[model.Signature]int{}
	var groups []Group
	add := func(rec model.CallRecord) {
		if rec.Event() != event {
			return
		}
		sig := rec.Signature()
		i, ok := index[sig]
		if !ok {
			i = len(groups)
			index[sig] = i
			groups = append(groups, Group{Signature: sig})
		}
		groups[i].Members = append(groups[i].Members, rec)
	}
	for _, r := range doc.Registrars {
		add(r)
	}
	for _, p := range doc.Publishers {
		add(p)
	}
	for _, s := range doc.Subscribers {
		add(s)
	}
	return groups
}
