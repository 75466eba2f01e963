// Package extract walks dumped syntax trees and pulls out event API call
// records: publish, subscribe, registerEvent, and direct collection calls.
//
// A call expression is matched by its spelling plus the type of the class
// that declares the callee, so user code with an unrelated publish() is
// never picked up.
//
// Event names are the raw source tokens of the first argument joined
// together, not an evaluated constant. Two different spellings of the same
// compile-time value therefore count as two different events; in exchange
// the extractor never needs to evaluate C++.
//
// Comments are attached by scanning the source file upward from the line
// above a call: a run of // lines, or one balanced /* */ block, ending
// directly above the call. The first non-comment line stops the scan. This
// is a heuristic over raw lines, not over the token stream; a comment on
// the same line as the call is not attached.
package extract
