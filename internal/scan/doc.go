// Package scan coordinates extraction across every translation unit in a
// compilation database.
//
// Each unit is handled by one worker goroutine that runs the external
// dumper process, decodes the tree, and walks it with purely local state.
// Records flow to the coordinator over one bounded channel per call kind;
// a separate channel carries completion signals. Workers launch in batches
// of the pool width, and a new batch starts only once every unit launched
// so far has finished. The coordinator polls on a fixed interval, draining
// the result channels in a fixed kind order so workers never block for
// long and aggregation is append-only.
//
// Within one unit, records keep source order. Across units the interleave
// follows completion timing; consumers depend only on first-seen event
// order within the aggregated document, never on a global record order.
//
// A unit whose parse fails is logged and counted, nothing more. One broken
// file must not cost the other several hundred.
package scan
