package models

// MaxCompletion caps the completion score.
const MaxCompletion = 100

// IsSectionComplete applies the presence rule: a non-null boolean, or an object
// with at least one key. An empty object is incomplete even though it was
// touched, and an object of all-false answers is complete.
func IsSectionComplete(v SectionValue) bool {
	if _, ok := v.Bool(); ok {
		return true
	}
	if obj, ok := v.Object(); ok {
		return len(obj) > 0
	}
	return false
}

// ComputeCompletion returns the weighted presence score of the sections.
// It is a pure function of the payloads; unknown keys carry no weight.
func ComputeCompletion(sections Sections) int {
	total := 0
	for _, spec := range Catalog {
		if v, ok := sections[spec.Key]; ok && IsSectionComplete(v) {
			total += spec.Weight
		}
	}
	return min(total, MaxCompletion)
}
