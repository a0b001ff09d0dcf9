// Package id provides unique identifier generation for operations.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// Prefix is prepended to every generated operation ID.
const Prefix = "op-"

// Generate creates a new unique operation ID.
// Format: op-<uuid v4>
// Example: op-9b2f0c3e-4a1d-4c55-8f7e-0d1f2a3b4c5d
func Generate() string {
	return Prefix + uuid.NewString()
}

// Valid reports whether s looks like an ID produced by Generate.
func Valid(s string) bool {
	rest, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
