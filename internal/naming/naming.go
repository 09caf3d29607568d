// Package naming normalizes user-entered names, contact fields and id lists
// before they reach the store.
package naming

import "strings"

// Clean trims and collapses runs of whitespace to single spaces.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Optional returns nil for blank input and the trimmed value otherwise.
func Optional(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return &v
}

func OptionalPtr(p *string) *string {
	if p == nil {
		return nil
	}
	return Optional(*p)
}

// Email trims and lowercases an address. Blank input yields nil.
func Email(p *string) *string {
	v := OptionalPtr(p)
	if v == nil {
		return nil
	}
	lower := strings.ToLower(*v)
	return &lower
}

// DedupeIDs trims ids, drops blanks and keeps the first occurrence of each.
func DedupeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Key folds an identifier for case-insensitive matching of emails, names
// and group names in imports.
func Key(s string) string {
	return strings.ToLower(Clean(s))
}

// Identifier is how a person is referenced in exported connections: the
// email when present, else the name.
func Identifier(email *string, name string) string {
	if e := OptionalPtr(email); e != nil {
		return *e
	}
	return Clean(name)
}
