package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

const (
	Presence  = "presence"
	Format    = "format"
	Inclusion = "inclusion"
	Exclusion = "exclusion"
	Length    = "length"
	Numeric   = "numeric"
)

var defaults = map[string]Func{
	Presence:  validatePresence,
	Format:    validateFormat,
	Inclusion: validateInclusion,
	Exclusion: validateExclusion,
	Length:    validateLength,
	Numeric:   validateNumeric,
}

// validatePresence fails when value is nil, a whitespace-only string, or a
// container (slice/map/array) that is empty. 0, false, and any other
// non-empty value pass (spec §4.6 "Presence validator").
func validatePresence(value any, _ any) (string, bool) {
	if value == nil {
		return "can't be blank", false
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return "can't be blank", false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		if rv.Len() == 0 {
			return "can't be blank", false
		}
	}
	return "", true
}

// validateFormat checks value (expected to be a string) against a regular
// expression given either as *regexp.Regexp or a pattern string.
func validateFormat(value any, optValue any) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "is invalid", false
	}

	var re *regexp.Regexp
	switch v := optValue.(type) {
	case *regexp.Regexp:
		re = v
	case string:
		compiled, err := regexp.Compile(v)
		if err != nil {
			return fmt.Sprintf("has an invalid format pattern: %v", err), false
		}
		re = compiled
	default:
		return "has no format pattern configured", false
	}

	if !re.MatchString(s) {
		return "is invalid", false
	}
	return "", true
}

// validateInclusion checks that value appears in the provided slice of
// allowed values.
func validateInclusion(value any, optValue any) (string, bool) {
	allowed, ok := optValue.([]any)
	if !ok {
		return "has no inclusion set configured", false
	}
	for _, a := range allowed {
		if a == value {
			return "", true
		}
	}
	return "is not included in the list", false
}

// validateExclusion checks that value does not appear in the provided
// slice of disallowed values.
func validateExclusion(value any, optValue any) (string, bool) {
	disallowed, ok := optValue.([]any)
	if !ok {
		return "has no exclusion set configured", false
	}
	for _, d := range disallowed {
		if d == value {
			return "is reserved", false
		}
	}
	return "", true
}

// LengthOptions bounds a length check. Zero means unbounded for Min/Max;
// Is, when non-zero, requires an exact length.
type LengthOptions struct {
	Min, Max, Is int
}

// validateLength checks the length of a string or container against
// LengthOptions.
func validateLength(value any, optValue any) (string, bool) {
	opts, ok := optValue.(LengthOptions)
	if !ok {
		return "has no length bounds configured", false
	}

	length, ok := lengthOf(value)
	if !ok {
		return "does not support length validation", false
	}

	if opts.Is != 0 && length != opts.Is {
		return fmt.Sprintf("is the wrong length (should be %d characters)", opts.Is), false
	}
	if opts.Min != 0 && length < opts.Min {
		return fmt.Sprintf("is too short (minimum is %d characters)", opts.Min), false
	}
	if opts.Max != 0 && length > opts.Max {
		return fmt.Sprintf("is too long (maximum is %d characters)", opts.Max), false
	}
	return "", true
}

func lengthOf(value any) (int, bool) {
	if s, ok := value.(string); ok {
		return len([]rune(s)), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}

// validateNumeric checks that value is some numeric Go type.
func validateNumeric(value any, _ any) (string, bool) {
	switch value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return "", true
	default:
		return "is not a number", false
	}
}
