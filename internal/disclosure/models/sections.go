package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	dErrors "homedisclose/pkg/domain-errors"
)

// SectionKey identifies one of the thirteen form sections. The literal values
// are persisted and consumed by clients.
type SectionKey string

const (
	Section1  SectionKey = "section1"
	Section2  SectionKey = "section2"
	Section3  SectionKey = "section3"
	Section4  SectionKey = "section4"
	Section5  SectionKey = "section5"
	Section6  SectionKey = "section6"
	Section7  SectionKey = "section7"
	Section8  SectionKey = "section8"
	Section9  SectionKey = "section9"
	Section10 SectionKey = "section10"
	Section11 SectionKey = "section11"
	Section12 SectionKey = "section12"
	Section13 SectionKey = "section13"
)

// SectionKind selects which rules of the catalog apply to a section.
type SectionKind string

const (
	// SectionComposite holds a structured payload of named fields.
	SectionComposite SectionKind = "composite"
	// SectionSingleAnswer holds {"answer": "yes"|"no"|"unknown", "explanation": "..."}
	// or, for legacy clients, a bare boolean.
	SectionSingleAnswer SectionKind = "single_answer"
)

// Field names the catalog refers to.
const (
	FieldAnswer              = "answer"
	FieldExplanation         = "explanation"
	FieldRoofType            = "roof_type"
	FieldRoofAge             = "roof_age"
	FieldWaterProvider       = "water_provider"
	FieldUtilityProviders    = "utility_providers"
	FieldSmokeDetectorStatus = "smoke_detector_status"
)

// RequiredField is a field whose absence blocks signing.
type RequiredField struct {
	Name  string
	Label string
}

// SectionSpec is one row of the section catalog. Completion weights and
// validation rules are both read from this table.
type SectionSpec struct {
	Key    SectionKey
	Number int
	Title  string
	Weight int
	Kind   SectionKind

	// Required fields must be present whenever the document is validated.
	Required []RequiredField
	// RequiredOnceStarted fields are only required after the section holds any data.
	RequiredOnceStarted []RequiredField

	// MinAnsweredItems warns when fewer item answers than this are recorded.
	MinAnsweredItems int
	// RecommendedNonEmpty warns when the named field is missing or empty.
	RecommendedNonEmpty []RequiredField
}

// Catalog is ordered by section number. Weights sum to 100.
var Catalog = []SectionSpec{
	{
		Key: Section1, Number: 1, Title: "Property Items", Weight: 15, Kind: SectionComposite,
		MinAnsweredItems: 5,
	},
	{
		Key: Section2, Number: 2, Title: "Roof and Structure", Weight: 15, Kind: SectionComposite,
		Required: []RequiredField{
			{Name: FieldRoofType, Label: "Roof type"},
			{Name: FieldRoofAge, Label: "Roof age"},
		},
	},
	{
		Key: Section3, Number: 3, Title: "Water and Utilities", Weight: 10, Kind: SectionComposite,
		Required: []RequiredField{
			{Name: FieldWaterProvider, Label: "Water supply provider"},
		},
		RecommendedNonEmpty: []RequiredField{
			{Name: FieldUtilityProviders, Label: "Utility providers"},
		},
	},
	{Key: Section4, Number: 4, Title: "Flooding and Drainage", Weight: 5, Kind: SectionSingleAnswer},
	{Key: Section5, Number: 5, Title: "Structural Conditions", Weight: 10, Kind: SectionComposite},
	{Key: Section6, Number: 6, Title: "Repairs and Replacements", Weight: 5, Kind: SectionSingleAnswer},
	{Key: Section7, Number: 7, Title: "Environmental Hazards", Weight: 5, Kind: SectionSingleAnswer},
	{
		Key: Section8, Number: 8, Title: "Safety Systems", Weight: 10, Kind: SectionComposite,
		RequiredOnceStarted: []RequiredField{
			{Name: FieldSmokeDetectorStatus, Label: "Smoke detector status"},
		},
	},
	{Key: Section9, Number: 9, Title: "Insurance Claims", Weight: 5, Kind: SectionSingleAnswer},
	{Key: Section10, Number: 10, Title: "Permits and Improvements", Weight: 5, Kind: SectionComposite},
	{Key: Section11, Number: 11, Title: "Legal and Title Matters", Weight: 5, Kind: SectionSingleAnswer},
	{Key: Section12, Number: 12, Title: "Association and Assessments", Weight: 5, Kind: SectionSingleAnswer},
	{Key: Section13, Number: 13, Title: "Other Material Facts", Weight: 5, Kind: SectionSingleAnswer},
}

var catalogByKey = func() map[SectionKey]SectionSpec {
	m := make(map[SectionKey]SectionSpec, len(Catalog))
	for _, spec := range Catalog {
		m[spec.Key] = spec
	}
	return m
}()

// LookupSection returns the catalog row for key.
func LookupSection(key SectionKey) (SectionSpec, bool) {
	spec, ok := catalogByKey[key]
	return spec, ok
}

// ParseSectionKey accepts "section7" or the bare number "7".
func ParseSectionKey(s string) (SectionKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		s = "section" + strconv.Itoa(n)
	}
	key := SectionKey(s)
	if _, ok := catalogByKey[key]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown section")
	}
	return key, nil
}

// SectionValue is one section's payload. Shapes differ per section, so the
// value is kept as decoded JSON and inspected through the accessors.
type SectionValue struct {
	value any
}

// NewSectionValue wraps an already-decoded JSON value.
func NewSectionValue(v any) SectionValue {
	return SectionValue{value: v}
}

// Value returns the decoded JSON value.
func (v SectionValue) Value() any {
	return v.value
}

// IsNull reports an unanswered section.
func (v SectionValue) IsNull() bool {
	return v.value == nil
}

// Bool returns the value when the section is a bare boolean.
func (v SectionValue) Bool() (bool, bool) {
	b, ok := v.value.(bool)
	return b, ok
}

// Object returns the value when the section is a JSON object.
func (v SectionValue) Object() (map[string]any, bool) {
	m, ok := v.value.(map[string]any)
	return m, ok
}

func (v SectionValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.value)
}

func (v *SectionValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.value = nil
		return nil
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	v.value = decoded
	return nil
}

// Sections maps section keys to their payloads. Missing keys are unanswered.
type Sections map[SectionKey]SectionValue

// Clone copies the map; payloads are treated as immutable once stored.
func (s Sections) Clone() Sections {
	out := make(Sections, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
