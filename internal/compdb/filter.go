package compdb

// Filter narrows which database entries a scan processes. Exclusions win
// over subset membership; both match on the exact file path as spelled in
// the database.
type Filter struct {
	Excludes []string
	Subset   []string
}

// Eligible reports whether file should be scanned, with a short reason
// when it should not.
func (f Filter) Eligible(file string) (bool, string) {
	for _, ex := range f.Excludes {
		if file == ex {
			return false, "excluded"
		}
	}
	if len(f.Subset) > 0 {
		for _, s := range f.Subset {
			if file == s {
				return true, ""
			}
		}
		return false, "not in subset"
	}
	return true, ""
}
