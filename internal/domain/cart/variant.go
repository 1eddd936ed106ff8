package cart

import (
	"slices"
	"strconv"
	"strings"
)

// VariantPair is one chosen variant option, e.g. Color=Rojo
type VariantPair struct {
	Name  string
	Value string
}

// VariantSelection maps a variant name to the chosen value.
// Key order is irrelevant to item identity.
type VariantSelection map[string]string

// VariantSignature is the canonical form of a selection: pairs sorted by
// name then value. Signatures are compared pair by pair, so names and
// values may contain any character without colliding.
type VariantSignature []VariantPair

// Signature canonicalises the selection
func (s VariantSelection) Signature() VariantSignature {
	sig := make(VariantSignature, 0, len(s))
	for name, value := range s {
		sig = append(sig, VariantPair{Name: name, Value: value})
	}
	slices.SortFunc(sig, func(a, b VariantPair) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})
	return sig
}

// Clone returns an independent copy; a nil selection becomes empty
func (s VariantSelection) Clone() VariantSelection {
	out := make(VariantSelection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether both signatures hold the same pairs
func (s VariantSignature) Equal(other VariantSignature) bool {
	return slices.Equal(s, other)
}

// String renders the signature for logs, quoting each part
func (s VariantSignature) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = strconv.Quote(p.Name) + "=" + strconv.Quote(p.Value)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
