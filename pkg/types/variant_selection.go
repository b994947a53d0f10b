package types

import (
	"sort"
	"strings"
)

// VariantSelection captures the option choices a shopper made for a product,
// e.g. {"Size": "M", "Color": "Cognac"}. It persists as JSONB via the GORM
// json serializer.
type VariantSelection map[string]string

// Normalize trims surrounding whitespace from names and values and drops
// entries that end up empty on either side.
func (v VariantSelection) Normalize() VariantSelection {
	if len(v) == 0 {
		return nil
	}
	out := make(VariantSelection, len(v))
	for name, value := range v {
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		out[name] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Key returns the canonical encoding used for line-item identity: entries
// sorted by option name, joined as name=value pairs. Two selections with the
// same pairs always produce the same key regardless of map order, and the
// base product (no selection) encodes to the empty string.
func (v VariantSelection) Key() string {
	normalized := v.Normalize()
	if len(normalized) == 0 {
		return ""
	}

	names := make([]string, 0, len(normalized))
	for name := range normalized {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+normalized[name])
	}
	return strings.Join(pairs, ";")
}

// Equal reports whether two selections resolve to the same identity.
func (v VariantSelection) Equal(other VariantSelection) bool {
	return v.Key() == other.Key()
}
