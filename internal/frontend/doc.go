// Package frontend is the boundary to the C++ parser. The parser itself
// lives outside this module: a clang-based dumper binary is run once per
// translation unit and writes a single JSON syntax tree to stdout. That
// keeps parser crashes and parser memory in a disposable child process.
//
// The tree schema is small on purpose. Node kinds form a closed set;
// anything the dumper emits outside it decodes as KindUnknown and is
// carried but never matched. Types come with both the source spelling and
// the canonical spelling because extraction needs one or the other
// depending on the construct.
package frontend
