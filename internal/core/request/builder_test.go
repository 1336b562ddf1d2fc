package request

import (
	"testing"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

func mustOperation(t *testing.T, key string) domain.Operation {
	t.Helper()
	op, ok := domain.LookupOperation(key)
	if !ok {
		t.Fatalf("operation %q is not registered", key)
	}
	return op
}

func TestBuildRecommendIsOrderIndependent(t *testing.T) {
	op := mustOperation(t, domain.OpRecommend)

	first, err := Build(op, []string{"7"}, NewQuery().Limit(domain.OptionHowMany, 5).Flag(domain.OptionDither, true))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := Build(op, []string{"7"}, NewQuery().Flag(domain.OptionDither, true).Limit(domain.OptionHowMany, 5))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, req := range []domain.Request{first, second} {
		if req.Path != "/recommend/7" {
			t.Fatalf("expected path /recommend/7, got %s", req.Path)
		}
		if got := req.Query.Get(domain.OptionHowMany); got != "5" {
			t.Fatalf("expected howMany=5, got %q", got)
		}
		if !req.Query.Has(domain.OptionDither) || req.Query.Get(domain.OptionDither) != "" {
			t.Fatalf("expected dither present with empty value, got %v", req.Query)
		}
		if len(req.Query) != 2 {
			t.Fatalf("expected exactly two query keys, got %v", req.Query)
		}
	}
	if first.URL() != second.URL() {
		t.Fatalf("expected identical URLs, got %q and %q", first.URL(), second.URL())
	}
}

func TestFlagsSerializeAsPresenceOnly(t *testing.T) {
	for _, key := range []string{domain.OptionDither, domain.OptionOverwrite, domain.OptionFresh, domain.OptionProfileBased} {
		on := NewQuery().Flag(key, true).Values()
		if !on.Has(key) || on.Get(key) != "" {
			t.Fatalf("expected %s present with empty value, got %v", key, on)
		}
		off := NewQuery().Flag(key, false).Values()
		if off.Has(key) {
			t.Fatalf("expected %s absent when false, got %v", key, off)
		}
		cleared := NewQuery().Flag(key, true).Flag(key, false).Values()
		if cleared.Has(key) {
			t.Fatalf("expected %s removed after reset, got %v", key, cleared)
		}
	}
}

func TestLimitOmitsNonPositiveValues(t *testing.T) {
	for _, n := range []int{0, -5} {
		if NewQuery().Limit(domain.OptionHowMany, n).Values().Has(domain.OptionHowMany) {
			t.Fatalf("expected howMany omitted for %d", n)
		}
	}
	if got := NewQuery().Limit(domain.OptionHowMany, 10).Values().Get(domain.OptionHowMany); got != "10" {
		t.Fatalf("expected howMany=10, got %q", got)
	}
}

func TestLimitStringIsPermissive(t *testing.T) {
	for _, raw := range []string{"", "abc", "0", "-3", "NaN", "Inf"} {
		if NewQuery().LimitString(domain.OptionHowMany, raw).Values().Has(domain.OptionHowMany) {
			t.Fatalf("expected howMany omitted for %q", raw)
		}
	}
	if got := NewQuery().LimitString(domain.OptionHowMany, " 12 ").Values().Get(domain.OptionHowMany); got != "12" {
		t.Fatalf("expected howMany=12, got %q", got)
	}
}

func TestListJoinsWithCommas(t *testing.T) {
	values := NewQuery().List(domain.OptionTerms, []string{"sport", "news", "tech"}).Values()
	if got := values.Get(domain.OptionTerms); got != "sport,news,tech" {
		t.Fatalf("expected comma-joined terms, got %q", got)
	}
	if NewQuery().List(domain.OptionTerms, nil).Values().Has(domain.OptionTerms) {
		t.Fatalf("expected empty list omitted")
	}
}

func TestBuildIngestQuotesItemAndKeepsZeroValue(t *testing.T) {
	op := mustOperation(t, domain.OpIngest)
	q := NewQuery().
		Set(domain.OptionID, "42").
		Set(domain.OptionURL, Quote("shoe-1")).
		Set(domain.OptionValue, "0")

	req, err := Build(op, nil, q)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if req.Path != "/ingest" {
		t.Fatalf("expected /ingest, got %s", req.Path)
	}
	if got := req.Query.Get(domain.OptionURL); got != "'shoe-1'" {
		t.Fatalf("expected quoted item, got %q", got)
	}
	if got := req.Query.Get(domain.OptionValue); got != "0" {
		t.Fatalf("expected value 0 kept, got %q", got)
	}
}

func TestBuildKeepsSegmentOrderAndDoesNotEscape(t *testing.T) {
	op := mustOperation(t, domain.OpTermItemAdd)
	req, err := Build(op, []string{"shoe-1", "red", "leather", "red"}, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if req.Path != "/termItemAdd/shoe-1/red/leather/red" {
		t.Fatalf("unexpected path %s", req.Path)
	}
	if req.URL() != req.Path {
		t.Fatalf("expected no query string, got %s", req.URL())
	}

	raw, err := Build(mustOperation(t, domain.OpTermItemList), []string{"a b"}, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if raw.Path != "/termItemList/a b" {
		t.Fatalf("expected unescaped segment, got %s", raw.Path)
	}
}

func TestBuildNoPathParamsUsesOperationNameOnly(t *testing.T) {
	req, err := Build(mustOperation(t, domain.OpMostPopular), nil, NewQuery())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if req.Path != "/mostPopular" {
		t.Fatalf("expected /mostPopular, got %s", req.Path)
	}
	if req.Query != nil {
		t.Fatalf("expected nil query, got %v", req.Query)
	}
}

func TestBuildRejectsArityAndUnknownOptions(t *testing.T) {
	if _, err := Build(mustOperation(t, domain.OpRecommend), nil, nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected arity error, got %v", err)
	}
	if _, err := Build(mustOperation(t, domain.OpForget), nil, nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected minimum arity error, got %v", err)
	}
	_, err := Build(mustOperation(t, domain.OpProfile), []string{"7"}, NewQuery().Flag(domain.OptionDither, true))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected unsupported option error, got %v", err)
	}
}

func TestLookupOperationReturnsCopy(t *testing.T) {
	op := mustOperation(t, domain.OpRecommend)
	op.Options[0] = "tampered"
	op.Endpoint = "tampered"

	again := mustOperation(t, domain.OpRecommend)
	if again.Endpoint != "recommend" || again.Options[0] == "tampered" {
		t.Fatalf("descriptor table was mutated: %+v", again)
	}
}
