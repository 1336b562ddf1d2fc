package validate

import (
	"strings"
	"testing"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

func TestRequireNumericAcceptsNumbersAndNumericStrings(t *testing.T) {
	for _, value := range []any{7, int64(-3), uint8(1), 2.5, "42", "-17", "3.14", "1e3", "+8"} {
		if err := RequireNumeric(value, "user_id"); err != nil {
			t.Fatalf("RequireNumeric(%#v) error = %v", value, err)
		}
	}
}

func TestRequireNumericRejectsNonNumeric(t *testing.T) {
	for _, value := range []any{"abc", "", "  ", " 7 ", "7\n", "\t-17", "0x1A", "NaN", "Inf", "1_000", nil, true, []int{1}} {
		err := RequireNumeric(value, "user_id")
		if err == nil {
			t.Fatalf("RequireNumeric(%#v) expected error", value)
		}
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %#v, got %v", value, err)
		}
		if !strings.Contains(err.Error(), "user_id") {
			t.Fatalf("expected field name in error, got %v", err)
		}
	}
}

func TestRequireNonEmptyAlpha(t *testing.T) {
	for _, value := range []string{"", "123", "-_-", "٣٤"} {
		if err := RequireNonEmptyAlpha(value, "item"); err == nil {
			t.Fatalf("RequireNonEmptyAlpha(%q) expected error", value)
		}
	}
	for _, value := range []string{"item-1", "a", "42x"} {
		if err := RequireNonEmptyAlpha(value, "item"); err != nil {
			t.Fatalf("RequireNonEmptyAlpha(%q) error = %v", value, err)
		}
	}
}

func TestRequireEachNonEmptyAlphaReportsFirstViolation(t *testing.T) {
	err := RequireEachNonEmptyAlpha([]string{"red", "12", ""}, "terms")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "terms[1]") {
		t.Fatalf("expected first offending index in error, got %v", err)
	}
}

func TestRequireEachNumeric(t *testing.T) {
	if err := RequireEachNumeric([]string{"1", "2.5"}, "user_ids"); err != nil {
		t.Fatalf("RequireEachNumeric() error = %v", err)
	}
	err := RequireEachNumeric([]string{"1", "two", "x"}, "user_ids")
	if err == nil || !strings.Contains(err.Error(), "user_ids[1]") {
		t.Fatalf("expected user_ids[1] violation, got %v", err)
	}
}

func TestRequireInRange(t *testing.T) {
	for _, value := range []int{-255, 0, 255} {
		if err := RequireInRange(value, -255, 255, "value"); err != nil {
			t.Fatalf("RequireInRange(%d) error = %v", value, err)
		}
	}
	for _, value := range []int{-256, 256, 1000} {
		if err := RequireInRange(value, -255, 255, "value"); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("RequireInRange(%d) expected ErrInvalidInput, got %v", value, err)
		}
	}
}

func TestRequireNonEmptySlice(t *testing.T) {
	if err := RequireNonEmptySlice([]string{}, "items"); err == nil {
		t.Fatalf("expected error for empty slice")
	}
	if err := RequireNonEmptySlice([]string(nil), "items"); err == nil {
		t.Fatalf("expected error for nil slice")
	}
	if err := RequireNonEmptySlice([]string{"a"}, "items"); err != nil {
		t.Fatalf("RequireNonEmptySlice() error = %v", err)
	}
}

func TestRequireDistinct(t *testing.T) {
	if err := RequireDistinct([]string{"x", "y"}, "others"); err != nil {
		t.Fatalf("RequireDistinct() error = %v", err)
	}
	err := RequireDistinct([]string{"x", "y", "x"}, "others")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "others[2]") {
		t.Fatalf("expected duplicate position in error, got %v", err)
	}
}
