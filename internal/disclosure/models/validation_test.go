package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// scenarioBSections fills exactly what the validator requires.
func scenarioBSections() Sections {
	sections := Sections{
		Section2: NewSectionValue(map[string]any{"roof_type": "Composition", "roof_age": "10 years"}),
		Section3: NewSectionValue(map[string]any{"water_provider": "city"}),
	}
	for _, key := range []SectionKey{Section4, Section6, Section7, Section9, Section11, Section12, Section13} {
		sections[key] = NewSectionValue(map[string]any{"answer": "no"})
	}
	return sections
}

func issueFields(issues []ValidationIssue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, string(i.Section)+"."+i.Field)
	}
	return out
}

func TestValidate_EmptyDocument(t *testing.T) {
	result := Validate(Sections{})

	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
	fields := issueFields(result.Errors)
	assert.Contains(t, fields, "section2.roof_type")
	assert.Contains(t, fields, "section2.roof_age")
	assert.Contains(t, fields, "section3.water_provider")
	for _, key := range []string{"section4", "section6", "section7", "section9", "section11", "section12", "section13"} {
		assert.Contains(t, fields, key+".answer")
	}
	// section8 is only checked once started
	assert.NotContains(t, fields, "section8.smoke_detector_status")
}

func TestValidate_RequiredFieldsOnly(t *testing.T) {
	sections := scenarioBSections()
	result := Validate(sections)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Less(t, ComputeCompletion(sections), 100)
}

func TestValidate_Rules(t *testing.T) {
	t.Run("blank strings are missing", func(t *testing.T) {
		sections := scenarioBSections()
		sections[Section2] = NewSectionValue(map[string]any{"roof_type": "  ", "roof_age": "5"})
		result := Validate(sections)
		assert.False(t, result.Valid)
		assert.Equal(t, []string{"section2.roof_type"}, issueFields(result.Errors))
	})

	t.Run("started safety section needs smoke detector status", func(t *testing.T) {
		sections := scenarioBSections()
		sections[Section8] = NewSectionValue(map[string]any{"co_detector": "yes"})
		result := Validate(sections)
		assert.False(t, result.Valid)
		assert.Equal(t, []string{"section8.smoke_detector_status"}, issueFields(result.Errors))
	})

	t.Run("single answer accepts unknown and booleans", func(t *testing.T) {
		sections := scenarioBSections()
		sections[Section4] = NewSectionValue(map[string]any{"answer": "Unknown"})
		sections[Section6] = NewSectionValue(true)
		sections[Section7] = NewSectionValue(map[string]any{"answer": false})
		assert.True(t, Validate(sections).Valid)
	})

	t.Run("single answer rejects free text", func(t *testing.T) {
		sections := scenarioBSections()
		sections[Section9] = NewSectionValue(map[string]any{"answer": "maybe"})
		result := Validate(sections)
		assert.Equal(t, []string{"section9.answer"}, issueFields(result.Errors))
	})
}

func TestValidate_Warnings(t *testing.T) {
	t.Run("few property items and no utility providers", func(t *testing.T) {
		sections := scenarioBSections()
		sections[Section1] = NewSectionValue(map[string]any{"range": "yes", "oven": "no"})
		result := Validate(sections)

		assert.True(t, result.Valid, "warnings never block")
		fields := issueFields(result.Warnings)
		assert.Contains(t, fields, "section1.")
		assert.Contains(t, fields, "section3.utility_providers")
	})

	t.Run("enough items silence the item warning", func(t *testing.T) {
		sections := scenarioBSections()
		sections[Section1] = NewSectionValue(map[string]any{"items": map[string]any{
			"range": "yes", "oven": "no", "dishwasher": "unknown", "washer": true, "dryer": false,
		}})
		sections[Section3] = NewSectionValue(map[string]any{
			"water_provider":    "city",
			"utility_providers": []any{map[string]any{"type": "electric", "name": "PG&E"}},
		})
		assert.Empty(t, Validate(sections).Warnings)
	})

	t.Run("yes without explanation", func(t *testing.T) {
		sections := scenarioBSections()
		sections[Section7] = NewSectionValue(map[string]any{"answer": "yes"})
		result := Validate(sections)
		assert.True(t, result.Valid)
		assert.Contains(t, issueFields(result.Warnings), "section7.explanation")
	})
}
