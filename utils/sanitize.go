package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// SanitizePtr sanitizes an optional HTML field, keeping nil as nil.
func SanitizePtr(input *string) *string {
	if input == nil {
		return nil
	}
	clean := Sanitize(*input)
	return &clean
}
