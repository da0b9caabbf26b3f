package services

import (
	"fmt"
	"strings"
)

// NotFoundError reports a referenced row that does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field problem found in one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// fieldChecker accumulates field errors so callers can report them together.
type fieldChecker struct {
	errs []FieldError
}

func (c *fieldChecker) add(field, message string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: message})
}

// text checks a required string against a length ceiling counted in characters.
func (c *fieldChecker) text(field, value string, max int) {
	if value == "" {
		c.add(field, "must not be empty")
		return
	}
	c.optional(field, value, max)
}

func (c *fieldChecker) optional(field, value string, max int) {
	if max > 0 && len([]rune(value)) > max {
		c.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func (c *fieldChecker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.errs}
}

// Page is an offset/limit window over an ordered listing.
type Page struct {
	Skip  int
	Limit int
}

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Validate enforces skip >= 0 and 1 <= limit <= MaxLimit.
func (p Page) Validate() error {
	var c fieldChecker
	if p.Skip < 0 {
		c.add("skip", "must be greater than or equal to 0")
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		c.add("limit", fmt.Sprintf("must be between 1 and %d", MaxLimit))
	}
	return c.err()
}
