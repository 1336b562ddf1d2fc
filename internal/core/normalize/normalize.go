// Package normalize decodes the engine's response bodies into predictable
// Go values. The engine speaks three encodings: plain JSON, newline-delimited
// lists, and a bracket-swapped document that only becomes JSON after repair.
package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

// JSON decodes body into T. An empty body or a decode failure yields empty.
func JSON[T any](body string, empty T) T {
	if strings.TrimSpace(body) == "" {
		return empty
	}
	var out T
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return empty
	}
	return out
}

// RepairKeyed turns the engine's `["key":[...]]` envelope into a JSON object
// by replacing the last ']' with '}' and then the first '[' with '{'.
func RepairKeyed(body string) string {
	if i := strings.LastIndexByte(body, ']'); i >= 0 {
		body = body[:i] + "}" + body[i+1:]
	}
	if i := strings.IndexByte(body, '['); i >= 0 {
		body = body[:i] + "{" + body[i+1:]
	}
	return body
}

// KeyedSingle repairs body and returns the value list stored under key.
// Non-string list members keep their JSON text. Anything unparseable or a
// missing key yields an empty, non-nil slice.
func KeyedSingle(body, key string) []string {
	if strings.TrimSpace(body) == "" {
		return []string{}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(RepairKeyed(body)), &doc); err != nil {
		return []string{}
	}
	raw, ok := doc[key]
	if !ok {
		return []string{}
	}

	var members []json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, memberText(m))
	}
	return out
}

func memberText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// TextList splits body into non-empty lines, in order. With dedupe only the
// first occurrence of each line is kept.
func TextList(body string, dedupe bool) []string {
	out := []string{}
	var seen map[string]struct{}
	if dedupe {
		seen = make(map[string]struct{})
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if dedupe {
			if _, ok := seen[line]; ok {
				continue
			}
			seen[line] = struct{}{}
		}
		out = append(out, line)
	}
	return out
}

// IndexAligned pairs each input item with the score on the same position of
// body. Both sequences must have the same length and items must be distinct,
// otherwise a score would be dropped.
func IndexAligned(items []string, body string) (map[string]string, error) {
	scores := TextList(body, false)
	if len(scores) != len(items) {
		return nil, domain.WrapError(domain.ErrMalformedResponse, "index aligned",
			fmt.Errorf("got %d scores for %d items", len(scores), len(items)))
	}
	out := make(map[string]string, len(items))
	for i, item := range items {
		if _, ok := out[item]; ok {
			return nil, domain.WrapError(domain.ErrMalformedResponse, "index aligned",
				fmt.Errorf("item %q appears more than once", item))
		}
		out[item] = scores[i]
	}
	return out, nil
}
