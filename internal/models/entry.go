// Package models implements a way to store cache entries in memory
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MaxKeyLength is the longest key accepted, in bytes
const MaxKeyLength = 256

// An Entry is one key-value pair served by the cache and kept in the backing store
type Entry struct {
	Key       string          `json:"key" db:"key"`
	Value     json.RawMessage `json:"value" db:"value"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// CacheStats is a snapshot of cache occupancy. Keys go from the most to the least recently used
type CacheStats struct {
	Size     int      `json:"size"`
	Capacity int      `json:"capacity"`
	Keys     []string `json:"keys"`
}

// A ValidationError is a custom error type for data validation
type ValidationError struct {
	Field   string
	Struct  string
	Message string
}

// Error is an interface implementation for errors
func (e ValidationError) Error() string {
	return fmt.Sprintf("Validation error in field %s.%s: %s", e.Struct, e.Field, e.Message)
}

// NewEntryValidationError is a validation error in the Entry
func NewEntryValidationError(field, message string) ValidationError {
	return ValidationError{field, "entry", message}
}

// Validate checks if the Entry data is correct
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Key) == "" {
		return NewEntryValidationError("key", "is required")
	}
	if len(e.Key) > MaxKeyLength {
		return NewEntryValidationError("key", fmt.Sprintf("must be at most %d bytes", MaxKeyLength))
	}
	if len(e.Value) == 0 {
		return NewEntryValidationError("value", "is required")
	}
	if !json.Valid(e.Value) {
		return NewEntryValidationError("value", "must be valid JSON")
	}
	return nil
}
