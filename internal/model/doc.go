// Package model defines the call-record data model shared by every other
// internal package: source locations, canonical signatures, the four call
// record kinds, and the scan document that carries them between tools.
//
// model imports nothing internal. Signature canonicalization lives here so
// that the checker and the graph builder can never disagree about whether
// two records match.
//
// All JSON tags use snake_case. Comment text is NFC normalized at the
// serialization boundary; nothing else is free text.
package model
