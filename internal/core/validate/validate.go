// Package validate holds the argument checks applied before any request to
// the recommendation engine is built.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

// RequireNumeric accepts Go numeric kinds and numeric strings such as "42",
// "-3.5" or "1e3". The value becomes a path segment verbatim, so surrounding
// whitespace is rejected along with hexadecimal, NaN and Inf.
func RequireNumeric(value any, field string) error {
	if isNumeric(value) {
		return nil
	}
	return invalid(field, "must be numeric")
}

// RequireNonEmptyAlpha requires at least one ASCII letter in value.
func RequireNonEmptyAlpha(value, field string) error {
	if containsLetter(value) {
		return nil
	}
	return invalid(field, "must be a string containing at least one letter")
}

// RequireEachNonEmptyAlpha applies RequireNonEmptyAlpha to every element.
func RequireEachNonEmptyAlpha(values []string, field string) error {
	for i, v := range values {
		if !containsLetter(v) {
			return invalid(fmt.Sprintf("%s[%d]", field, i), "must be a string containing at least one letter")
		}
	}
	return nil
}

// RequireEachNumeric applies RequireNumeric to every element.
func RequireEachNumeric(values []string, field string) error {
	for i, v := range values {
		if !isNumeric(v) {
			return invalid(fmt.Sprintf("%s[%d]", field, i), "must be numeric")
		}
	}
	return nil
}

// RequireInRange checks min <= value <= max.
func RequireInRange(value, min, max int, field string) error {
	if value < min || value > max {
		return invalid(field, fmt.Sprintf("must be between %d and %d, got %d", min, max, value))
	}
	return nil
}

// RequireDistinct rejects a list that names the same value twice.
func RequireDistinct(values []string, field string) error {
	seen := make(map[string]int, len(values))
	for i, v := range values {
		if first, ok := seen[v]; ok {
			return invalid(fmt.Sprintf("%s[%d]", field, i), fmt.Sprintf("duplicates %s[%d] %q", field, first, v))
		}
		seen[v] = i
	}
	return nil
}

// RequireNonEmpty rejects a zero or negative count.
func RequireNonEmpty(n int, field string) error {
	if n <= 0 {
		return invalid(field, "must not be empty")
	}
	return nil
}

// RequireNonEmptySlice requires at least one element.
func RequireNonEmptySlice[T any](values []T, field string) error {
	return RequireNonEmpty(len(values), field)
}

func invalid(field, msg string) error {
	return domain.WrapError(domain.ErrInvalidInput, field, errors.New(msg))
}

func containsLetter(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}

func isNumeric(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return isFinite(float64(v))
	case float64:
		return isFinite(v)
	case string:
		return isNumericString(v)
	case fmt.Stringer:
		return isNumericString(v.String())
	default:
		return false
	}
}

func isNumericString(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	lower := strings.ToLower(s)
	// ParseFloat also understands hex floats, infinities and underscores.
	if strings.ContainsAny(lower, "xp_") || strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
