// Package request turns validated arguments into engine request paths and
// query strings.
//
// Path segments are joined verbatim and never escaped: the engine expects raw
// segments, so callers must only pass segment-safe strings. Anything that
// reaches Build unchecked is an injection surface against the upstream.
package request

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

// Query collects optional query parameters for one request.
type Query struct {
	values url.Values
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Set stores value verbatim, including empty strings and "0".
func (q *Query) Set(key, value string) *Query {
	q.values.Set(key, value)
	return q
}

// Flag marks key as present with an empty value when on, and removes it
// otherwise. A flag is never sent as a literal true/false.
func (q *Query) Flag(key string, on bool) *Query {
	if on {
		q.values.Set(key, "")
		return q
	}
	q.values.Del(key)
	return q
}

// Limit includes n only when it is positive.
func (q *Query) Limit(key string, n int) *Query {
	if n > 0 {
		q.values.Set(key, strconv.Itoa(n))
	}
	return q
}

// LimitString is the permissive form of Limit for textual input: anything
// that is not a positive number is dropped instead of rejected.
func (q *Query) LimitString(key, raw string) *Query {
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(f > 0) || math.IsInf(f, 1) {
		return q
	}
	q.values.Set(key, raw)
	return q
}

// Positive includes a float modifier such as a radius only when it is > 0.
func (q *Query) Positive(key string, f float64) *Query {
	if f > 0 && !math.IsInf(f, 1) {
		q.values.Set(key, strconv.FormatFloat(f, 'f', -1, 64))
	}
	return q
}

// List joins values with commas under a single key; empty lists are omitted.
func (q *Query) List(key string, values []string) *Query {
	if len(values) == 0 {
		return q
	}
	q.values.Set(key, strings.Join(values, ","))
	return q
}

// Values returns a copy of the collected parameters. A nil Query yields nil.
func (q *Query) Values() url.Values {
	if q == nil {
		return nil
	}
	out := make(url.Values, len(q.values))
	for k, v := range q.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Quote wraps an item handle in single quotes, the form the ingest endpoint
// expects in its url parameter.
func Quote(item string) string {
	return "'" + item + "'"
}

// Build assembles the request for op. Arity and option mismatches are
// programming errors in the caller and are reported as invalid input.
func Build(op domain.Operation, pathParams []string, q *Query) (domain.Request, error) {
	if !op.AcceptsArity(len(pathParams)) {
		return domain.Request{}, domain.WrapError(domain.ErrInvalidInput, op.Key,
			fmt.Errorf("unexpected path arity %d", len(pathParams)))
	}

	query := q.Values()
	for key := range query {
		if !op.AllowsOption(key) {
			return domain.Request{}, domain.WrapError(domain.ErrInvalidInput, op.Key,
				fmt.Errorf("unsupported query option %q", key))
		}
	}
	if len(query) == 0 {
		query = nil
	}

	return domain.Request{
		Operation: op.Key,
		Path:      Path(op.Endpoint, pathParams...),
		Query:     query,
	}, nil
}

// Path renders "/endpoint" or "/endpoint/p1/p2/...".
func Path(endpoint string, params ...string) string {
	if len(params) == 0 {
		return "/" + endpoint
	}
	return "/" + endpoint + "/" + strings.Join(params, "/")
}
