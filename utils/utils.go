// Package utils provides utility functions for the application.
package utils

import "strings"

func ToPtr[T any](v T) *T {
	return &v
}

// Deref returns the pointed-to value or the zero value for nil
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// NilIfEmpty maps blank strings to nil, the in-memory form of an empty cell
func NilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// EqualStringPtr treats nil and "" as the same value
func EqualStringPtr(a, b *string) bool {
	return Deref(a) == Deref(b)
}
