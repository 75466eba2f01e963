package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/evsys/eventlint/internal/model"
)

// LoaderConfig holds the connection settings for a graph upload.
type LoaderConfig struct {
	URI      string
	Username string
	Password string
	// Clean drops previously uploaded nodes and relationships first.
	Clean bool
	Log   *slog.Logger
}

// Loader mirrors a scan document into Neo4j using batch UNWIND queries:
// Event, CallSite, and Callback nodes, with PUBLISHES, SUBSCRIBES,
// REGISTERS, and INVOKES relationships. Role relationships carry a
// mismatched flag so inconsistent events can be queried directly.
type Loader struct {
	driver neo4j.DriverWithContext
	ctx    context.Context
	cfg    LoaderConfig
	log    *slog.Logger
}

// NewLoader connects to Neo4j and returns a ready-to-use loader.
func NewLoader(ctx context.Context, cfg LoaderConfig) (*Loader, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Loader{driver: driver, ctx: ctx, cfg: cfg, log: log}, nil
}

// Close releases the underlying driver resources.
func (l *Loader) Close() {
	l.driver.Close(l.ctx)
}

func (l *Loader) runCypher(cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(l.ctx, l.driver, cypher, params, neo4j.EagerResultTransformer)
	return err
}

// Load uploads the whole document: optional clean, indexes, then nodes
// and relationships in dependency order.
func (l *Loader) Load(doc *model.Document) error {
	if l.cfg.Clean {
		if err := l.CleanGraph(); err != nil {
			return err
		}
	}
	if err := l.CreateIndexes(); err != nil {
		return err
	}
	if err := l.loadEvents(doc); err != nil {
		return err
	}
	if err := l.loadCallSites(doc); err != nil {
		return err
	}
	return l.loadCallbacks(doc)
}

// CleanGraph removes all previously uploaded event-graph data.
func (l *Loader) CleanGraph() error {
	l.log.Info("cleaning existing event graph data")
	queries := []string{
		"MATCH ()-[r:PUBLISHES]->() DELETE r",
		"MATCH ()-[r:SUBSCRIBES]->() DELETE r",
		"MATCH ()-[r:REGISTERS]->() DELETE r",
		"MATCH ()-[r:INVOKES]->() DELETE r",
		"MATCH (n:Event) DETACH DELETE n",
		"MATCH (n:CallSite) DETACH DELETE n",
		"MATCH (n:Callback) DETACH DELETE n",
	}
	for _, q := range queries {
		if err := l.runCypher(q, nil); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes ensures the required indexes exist.
func (l *Loader) CreateIndexes() error {
	l.log.Info("creating indexes")
	indexes := []string{
		"CREATE INDEX event_name IF NOT EXISTS FOR (n:Event) ON (n.name)",
		"CREATE INDEX call_site_id IF NOT EXISTS FOR (n:CallSite) ON (n.id)",
		"CREATE INDEX callback_id IF NOT EXISTS FOR (n:Callback) ON (n.id)",
	}
	for _, q := range indexes {
		if err := l.runCypher(q, nil); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) loadEvents(doc *model.Document) error {
	batch := eventBatch(doc)
	l.log.Info("loading events", "count", len(batch))
	return l.runCypher(
		`UNWIND $batch AS row
		 MERGE (n:Event {name: row.name})`,
		map[string]any{"batch": batch},
	)
}

func (l *Loader) loadCallSites(doc *model.Document) error {
	pubs, subs, regs := roleBatches(doc)
	l.log.Info("loading call sites",
		"publishers", len(pubs), "subscribers", len(subs), "registrars", len(regs))
	for _, role := range []struct {
		rel   string
		batch []map[string]any
	}{
		{"PUBLISHES", pubs},
		{"SUBSCRIBES", subs},
		{"REGISTERS", regs},
	} {
		if len(role.batch) == 0 {
			continue
		}
		query := fmt.Sprintf(
			`UNWIND $batch AS row
			 MERGE (n:CallSite {id: row.id})
			 SET n.kind = row.kind, n.file = row.file, n.line = row.line,
			     n.column = row.column, n.signature = row.signature,
			     n.function = row.function
			 WITH n, row
			 MATCH (e:Event {name: row.event})
			 MERGE (n)-[r:%s]->(e)
			 SET r.signature = row.signature, r.mismatched = row.mismatched`,
			role.rel,
		)
		if err := l.runCypher(query, map[string]any{"batch": role.batch}); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) loadCallbacks(doc *model.Document) error {
	batch := callbackBatch(doc)
	l.log.Info("loading callbacks", "count", len(batch))
	if len(batch) == 0 {
		return nil
	}
	return l.runCypher(
		`UNWIND $batch AS row
		 MERGE (n:Callback {id: row.id})
		 SET n.name = row.name, n.kind = row.kind, n.file = row.file, n.line = row.line
		 WITH n, row
		 MATCH (s:CallSite {id: row.site})
		 MERGE (s)-[:INVOKES]->(n)`,
		map[string]any{"batch": batch},
	)
}

// eventBatch lists distinct event names in first-seen order across
// publishers, subscribers, and registrars.
func eventBatch(doc *model.Document) []map[string]any {
	var batch []map[string]any
	seen := map[string]bool{}
	note := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		batch = append(batch, map[string]any{"name": name})
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
	return batch
}

// roleBatches builds one batch per role relationship. A record's
// mismatched flag is true when its event carries more than one distinct
// canonical signature.
func roleBatches(doc *model.Document) (pubs, subs, regs []map[string]any) {
	mismatched := mismatchedEvents(doc)
	row := func(rec model.CallRecord) map[string]any {
		site := rec.Site()
		return map[string]any{
			"id":         siteID(site),
			"kind":       rec.Kind().String(),
			"event":      rec.Event(),
			"file":       site.File,
			"line":       site.Line,
			"column":     site.Column,
			"signature":  string(rec.Signature()),
			"function":   "",
			"mismatched": mismatched[rec.Event()],
		}
	}
	for _, p := range doc.Publishers {
		if p.EventName == "" {
			continue
		}
		r := row(p)
		r["function"] = p.EnclosingFunction
		pubs = append(pubs, r)
	}
	for _, s := range doc.Subscribers {
		if s.EventName == "" || s.Site().IsZero() {
			continue
		}
		r := row(s)
		r["function"] = s.EnclosingFunction
		subs = append(subs, r)
	}
	for _, r := range doc.Registrars {
		if r.EventName == "" {
			continue
		}
		m := row(r)
		m["function"] = r.EnclosingFunction
		regs = append(regs, m)
	}
	return pubs, subs, regs
}

// callbackBatch lists distinct resolved callback targets with the
// subscriber site that invokes each.
func callbackBatch(doc *model.Document) []map[string]any {
	var batch []map[string]any
	seen := map[string]bool{}
	for _, s := range doc.Subscribers {
		if s.EventName == "" || !s.Callback.Resolved() || s.Site().IsZero() {
			continue
		}
		key := s.Callback.Identity() + "@" + siteID(s.Site())
		if seen[key] {
			continue
		}
		seen[key] = true
		batch = append(batch, map[string]any{
			"id":   sinkID(s.Callback),
			"name": s.Callback.Name,
			"kind": sinkKindName(s.Callback.Kind),
			"file": s.Callback.DefSite.File,
			"line": s.Callback.DefSite.Line,
			"site": siteID(s.Site()),
		})
	}
	return batch
}

// mismatchedEvents returns the events whose records disagree on
// canonical signature.
func mismatchedEvents(doc *model.Document) map[string]bool {
	sigs := map[string]map[model.Signature]bool{}
	add := func(event string, sig model.Signature) {
		if event == "" {
			return
		}
		if sigs[event] == nil {
			sigs[event] = map[model.Signature]bool{}
		}
		sigs[event][sig] = true
	}
	for _, p := range doc.Publishers {
		add(p.EventName, p.Signature())
	}
	for _, s := range doc.Subscribers {
		add(s.EventName, s.Signature())
	}
	for _, r := range doc.Registrars {
		add(r.EventName, r.Signature())
	}
	out := map[string]bool{}
	for event, set := range sigs {
		if len(set) > 1 {
			out[event] = true
		}
	}
	return out
}
