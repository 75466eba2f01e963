package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// SchemaVersion is the current scan document schema. Bump on any change to
// the serialized shape.
const SchemaVersion = 1

// Document is one scan's aggregated output: every call record found across
// all translation units, in aggregation order. Aggregation order is
// first-seen per kind, so the slices double as the checker's event ordering.
type Document struct {
	SchemaVersion int          `json:"schema_version"`
	RunID         string       `json:"run_id,omitempty"`
	GeneratedAt   string       `json:"generated_at,omitempty"`
	Publishers    []Publisher  `json:"publishers"`
	Subscribers   []Subscriber `json:"subscribers"`
	Registrars    []Registrar  `json:"registrars"`
	DirectCalls   []DirectCall `json:"directcalls"`
}

// NewDocument returns an empty document at the current schema version with
// all record slices allocated, so an empty scan still serializes arrays
// rather than nulls.
func NewDocument() *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		Publishers:    []Publisher{},
		Subscribers:   []Subscriber{},
		Registrars:    []Registrar{},
		DirectCalls:   []DirectCall{},
	}
}

// DropInvalid removes records that carry no event name, reporting each
// through warnf. Such records cannot participate in grouping and must never
// enter the model. Direct calls are exempt; they carry no event name by
// construction.
func (d *Document) DropInvalid(warnf func(format string, args ...any)) int {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	dropped := 0

	pubs := d.Publishers[:0]
	for _, p := range d.Publishers {
		if p.EventName == "" {
			warnf("discarding publish record with no event name at %s", p.Location)
			dropped++
			continue
		}
		pubs = append(pubs, p)
	}
	d.Publishers = pubs

	subs := d.Subscribers[:0]
	for _, s := range d.Subscribers {
		if s.EventName == "" {
			warnf("discarding subscribe record with no event name at %s", s.Location)
			dropped++
			continue
		}
		subs = append(subs, s)
	}
	d.Subscribers = subs

	regs := d.Registrars[:0]
	for _, r := range d.Registrars {
		if r.EventName == "" {
			warnf("discarding registerEvent record with no event name at %s", r.Location)
			dropped++
			continue
		}
		regs = append(regs, r)
	}
	d.Registrars = regs

	return dropped
}

// normalize applies NFC to every comment field. Comments are the only
// free-text fields in the document; everything else is compiler output.
func (d *Document) normalize() {
	for i := range d.Publishers {
		d.Publishers[i].Comment = norm.NFC.String(d.Publishers[i].Comment)
	}
	for i := range d.Subscribers {
		d.Subscribers[i].Comment = norm.NFC.String(d.Subscribers[i].Comment)
		d.Subscribers[i].Callback.Comment = norm.NFC.String(d.Subscribers[i].Callback.Comment)
	}
	for i := range d.Registrars {
		d.Registrars[i].Comment = norm.NFC.String(d.Registrars[i].Comment)
	}
}

// Encode serializes the document as indented JSON. HTML escaping is off:
// C++ type spellings are full of angle brackets and must stay readable.
func (d *Document) Encode() ([]byte, error) {
	d.normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encoding scan document: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDocument validates raw bytes against the document schema and
// unmarshals them. Validation failure is fatal to the caller: a malformed
// document means the scan and the check disagree about the contract.
func DecodeDocument(data []byte) (*Document, error) {
	if err := ValidateDocumentBytes(data); err != nil {
		return nil, err
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding scan document: %w", err)
	}
	return &d, nil
}
