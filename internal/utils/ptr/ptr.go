// Package ptr has helpers for the optional pointer fields used by
// canonical records.
package ptr

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// If returns a pointer to v when ok, and nil otherwise. It accepts the
// (value, ok) results of a lookup directly.
func If[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}

// Value dereferences p, or returns fallback when p is nil.
func Value[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
