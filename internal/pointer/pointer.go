// Package pointer provides helpers for optional config values.
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}
