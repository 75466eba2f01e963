package model

import "strings"

// Signature is the canonical comma-joined parameter type list of a call
// record. Two records agree iff their Signature strings are byte-equal, so
// every path that produces one must go through this file.
type Signature string

const (
	// SignatureVoid stands in for an empty parameter list. An empty string
	// would make "no parameters" and "not derivable" ambiguous in reports.
	SignatureVoid Signature = "(void)"

	// SignatureError marks a record whose parameter types could not be
	// derived. It participates in mismatch detection like any other value
	// so broken extractions surface in reports instead of vanishing.
	SignatureError Signature = "ERROR"
)

// CanonicalSignature joins parameter type spellings into a Signature.
// Spellings are trimmed but otherwise taken verbatim; the front end already
// reports canonical type spellings, so rewriting them here would only
// introduce a second opinion.
func CanonicalSignature(types []string) Signature {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return SignatureVoid
	}
	return Signature(strings.Join(parts, ", "))
}

// SplitTemplateArgs splits a template argument list on top-level commas.
// Commas nested inside angle brackets stay put, so
// "int, Bar<float, double>" yields ["int", "Bar<float, double>"].
// The final argument is always emitted, however short.
func SplitTemplateArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var (
		args  []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(s[start:]))
	return args
}

// callbackAliasPrefix is how the front end spells the canonical type of a
// subscriber callback alias: a void function type over the event parameters.
const callbackAliasPrefix = "void ("

// ParseCallbackAlias extracts the parameter list from a callback alias type
// such as "void (int, float)". The inner text is returned verbatim: it is
// already a canonical comma-joined spelling, and re-splitting it would break
// function-pointer parameters that contain top-level commas of their own.
func ParseCallbackAlias(s string) (string, bool) {
	if !strings.HasPrefix(s, callbackAliasPrefix) || !strings.HasSuffix(s, ")") {
		return "", false
	}
	inner := s[len(callbackAliasPrefix) : len(s)-1]
	return strings.TrimSpace(inner), true
}

// SignatureFromAlias resolves a callback alias type to a Signature,
// or SignatureError when the alias is not of the expected shape.
func SignatureFromAlias(aliasType string) Signature {
	inner, ok := ParseCallbackAlias(aliasType)
	if !ok {
		return SignatureError
	}
	if inner == "" {
		return SignatureVoid
	}
	return Signature(inner)
}

// SplitCollectionTypes pulls the registered parameter types out of a
// registrar call's result type, e.g. "ES::SubscriberCollection<int, float> *"
// with prefix "ES::SubscriberCollection" yields ["int", "float"]. A spelling
// that does not match the expected shape is returned whole as a single
// pseudo-type so the anomaly shows up in reports rather than being dropped.
func SplitCollectionTypes(spelling, prefix string) []string {
	open := prefix + "<"
	if !strings.HasPrefix(spelling, open) || !strings.HasSuffix(spelling, "> *") {
		return []string{spelling}
	}
	inner := spelling[len(open) : len(spelling)-len("> *")]
	return SplitTemplateArgs(inner)
}
