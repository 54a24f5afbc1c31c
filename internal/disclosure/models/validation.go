package models

import (
	"fmt"
	"strings"
)

// Answer values accepted by single-answer sections.
const (
	AnswerYes     = "yes"
	AnswerNo      = "no"
	AnswerUnknown = "unknown"
)

// ValidationIssue points at one problem in one section.
type ValidationIssue struct {
	Section SectionKey `json:"section"`
	Field   string     `json:"field,omitempty"`
	Message string     `json:"message"`
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// ValidationError is wrapped in a CodeValidation domain error when an
// operation is refused because the document is not valid.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document has %d validation errors", len(e.Result.Errors))
}

// Validate evaluates every catalog rule against the sections. Warnings never
// affect Valid.
func Validate(sections Sections) ValidationResult {
	result := ValidationResult{
		Errors:   []ValidationIssue{},
		Warnings: []ValidationIssue{},
	}
	for _, spec := range Catalog {
		errs, warns := validateSection(spec, sections[spec.Key])
		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warns...)
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func validateSection(spec SectionSpec, v SectionValue) (errs, warns []ValidationIssue) {
	if spec.Kind == SectionSingleAnswer {
		return validateSingleAnswer(spec, v)
	}

	obj, _ := v.Object()
	for _, f := range spec.Required {
		if !fieldPresent(obj, f.Name) {
			errs = append(errs, ValidationIssue{Section: spec.Key, Field: f.Name, Message: f.Label + " is required"})
		}
	}
	if len(obj) > 0 {
		for _, f := range spec.RequiredOnceStarted {
			if !fieldPresent(obj, f.Name) {
				errs = append(errs, ValidationIssue{Section: spec.Key, Field: f.Name, Message: f.Label + " is required"})
			}
		}
	}
	if spec.MinAnsweredItems > 0 {
		if n := countAnsweredItems(obj); n < spec.MinAnsweredItems {
			warns = append(warns, ValidationIssue{
				Section: spec.Key,
				Message: fmt.Sprintf("only %d items answered; at least %d recommended", n, spec.MinAnsweredItems),
			})
		}
	}
	for _, f := range spec.RecommendedNonEmpty {
		if !fieldPresent(obj, f.Name) {
			warns = append(warns, ValidationIssue{Section: spec.Key, Field: f.Name, Message: f.Label + " should be listed"})
		}
	}
	return errs, warns
}

func validateSingleAnswer(spec SectionSpec, v SectionValue) (errs, warns []ValidationIssue) {
	if _, ok := v.Bool(); ok {
		return nil, nil
	}
	obj, _ := v.Object()
	answer, ok := normalizeAnswer(obj[FieldAnswer])
	if !ok {
		errs = append(errs, ValidationIssue{Section: spec.Key, Field: FieldAnswer, Message: "An answer is required"})
		return errs, nil
	}
	if answer == AnswerYes && !fieldPresent(obj, FieldExplanation) {
		warns = append(warns, ValidationIssue{
			Section: spec.Key,
			Field:   FieldExplanation,
			Message: "Please explain a yes answer",
		})
	}
	return nil, warns
}

// normalizeAnswer maps a raw answer to yes/no/unknown. Booleans are accepted
// for clients that predate the tri-state answer.
func normalizeAnswer(raw any) (string, bool) {
	switch a := raw.(type) {
	case bool:
		if a {
			return AnswerYes, true
		}
		return AnswerNo, true
	case string:
		switch s := strings.ToLower(strings.TrimSpace(a)); s {
		case AnswerYes, AnswerNo, AnswerUnknown:
			return s, true
		}
	}
	return "", false
}

// fieldPresent treats nil, blank strings and empty collections as absent.
func fieldPresent(obj map[string]any, name string) bool {
	if obj == nil {
		return false
	}
	switch v := obj[name].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// countAnsweredItems counts item keys carrying a recognised answer. A nested
// "items" object is preferred when the client sends one.
func countAnsweredItems(obj map[string]any) int {
	if nested, ok := obj["items"].(map[string]any); ok {
		obj = nested
	}
	n := 0
	for _, raw := range obj {
		if _, ok := normalizeAnswer(raw); ok {
			n++
		}
	}
	return n
}

// ValidationDetails exposes the result in error responses.
func (e *ValidationError) ValidationDetails() any {
	return e.Result
}
