// Package validate implements the request-time validators the orchestration
// server runs before dispatching a trigger: ICD-10 code format, target-field
// whitelists, input length bounds, and a response-size/script-injection
// guard against connector output before it reaches an insertion.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var icd10Pattern = regexp.MustCompile(`^[A-Z][0-9]{2}(\.[0-9A-Z]{1,4})?$`)

// ICD10 reports whether code matches the ICD-10-CM format: a letter, two
// digits, and an optional dot-separated 1-4 character subdivision.
func ICD10(code string) error {
	if !icd10Pattern.MatchString(code) {
		return fmt.Errorf("%q is not a valid ICD-10 code", code)
	}
	return nil
}

// Whitelist reports whether targetField is permitted. An empty whitelist
// permits any field, per the workflow schema's optional-whitelist rule.
func Whitelist(whitelist []string, targetField string) error {
	if len(whitelist) == 0 {
		return nil
	}
	for _, f := range whitelist {
		if strings.EqualFold(f, targetField) {
			return nil
		}
	}
	return fmt.Errorf("target field %q not in whitelist", targetField)
}

// InputLength enforces inclusive [min, max] bounds on a captured input
// field. A zero bound is treated as unset.
func InputLength(value string, min, max int) error {
	n := len(value)
	if min > 0 && n < min {
		return fmt.Errorf("input is %d characters, shorter than the minimum %d", n, min)
	}
	if max > 0 && n > max {
		return fmt.Errorf("input is %d characters, longer than the maximum %d", n, max)
	}
	return nil
}

// maxResponseBytes bounds a connector response body accepted for field
// extraction, independent of the connector's own read limit, so a workflow
// output never carries an unbounded string into an insertion.
const maxResponseBytes = 1 << 20

var scriptInjectionPatterns = []string{
	"<script",
	"javascript:",
	"onerror=",
	"onload=",
}

// Response guards a connector response value before it becomes insertion
// content: bounds its size and rejects obvious script-injection markers.
func Response(content string) error {
	if len(content) > maxResponseBytes {
		return fmt.Errorf("response content exceeds %d bytes", maxResponseBytes)
	}
	lower := strings.ToLower(content)
	for _, pattern := range scriptInjectionPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("response content contains a disallowed pattern: %s", pattern)
		}
	}
	return nil
}
