package errors

import (
	"math"
	"strings"
	"unicode"
)

// Weight bounds suggested by the node schema. Values outside this range are
// accepted by the blend engine (they extrapolate) but are worth a warning.
const (
	MinSuggestedWeight = -1.0
	MaxSuggestedWeight = 1.0
)

// ValidateNodeName validates a stored node name for safety and correctness.
// Names become file names in the file store and keys in the other stores.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "node name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "node name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "node name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "node name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "node name cannot start with a dot")
	}

	return nil
}

// ValidateWeight rejects weights that cannot take part in arithmetic.
// Finite weights outside [MinSuggestedWeight, MaxSuggestedWeight] are valid;
// use WeightInSuggestedRange to detect them.
func ValidateWeight(label string, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return New(ErrCodeInvalidWeight, "weight of %q must be finite, got %v", label, w)
	}
	return nil
}

// WeightInSuggestedRange reports whether w lies inside the schema's
// suggested weight range.
func WeightInSuggestedRange(w float64) bool {
	return w >= MinSuggestedWeight && w <= MaxSuggestedWeight
}

// ValidateScale rejects scale vectors with NaN or infinite components.
// Zero components are valid; they make the output matrix degenerate.
func ValidateScale(label string, x, y, z float64) error {
	for i, v := range [3]float64{x, y, z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidScale, "scale of %q has non-finite %c component: %v", label, "xyz"[i], v)
		}
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed values.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(allowed, ", "))
}
