package httpadapter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

// Values taken from clients end up as raw engine path segments, so anything
// that could change the upstream path or query is refused here.
const unsafeSegmentChars = "/?#%\\ \t\r\n"

func requireSegmentSafe(field string, values ...string) error {
	for i, v := range values {
		if strings.ContainsAny(v, unsafeSegmentChars) {
			name := field
			if len(values) > 1 {
				name = fmt.Sprintf("%s[%d]", field, i)
			}
			return domain.WrapError(domain.ErrInvalidInput, name, errors.New("contains characters not allowed in a path segment"))
		}
	}
	return nil
}

func pathParam(r *http.Request, name string) (string, error) {
	v := r.PathValue(name)
	if err := requireSegmentSafe(name, v); err != nil {
		return "", err
	}
	return v, nil
}

// queryList splits a comma separated parameter, dropping blanks.
func queryList(r *http.Request, key string) ([]string, error) {
	raw := r.URL.Query().Get(key)
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if err := requireSegmentSafe(key, out...); err != nil {
		return nil, err
	}
	return out, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, key, errors.New("must be an integer"))
	}
	return n, nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, key, errors.New("must be a number"))
	}
	return f, nil
}

// queryFlag treats a bare key (?dither) as set.
func queryFlag(r *http.Request, key string) (bool, error) {
	values := r.URL.Query()
	if !values.Has(key) {
		return false, nil
	}
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return true, nil
	}
	on, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.WrapError(domain.ErrInvalidInput, key, errors.New("must be a boolean"))
	}
	return on, nil
}

func recommendOptions(r *http.Request) (domain.RecommendOptions, error) {
	var opts domain.RecommendOptions
	var err error
	if opts.HowMany, err = queryInt(r, "how_many"); err != nil {
		return opts, err
	}
	if opts.Radius, err = queryFloat(r, "radius"); err != nil {
		return opts, err
	}
	if opts.Dither, err = queryFlag(r, "dither"); err != nil {
		return opts, err
	}
	if opts.Fresh, err = queryFlag(r, "fresh"); err != nil {
		return opts, err
	}
	if opts.ProfileBased, err = queryFlag(r, "profile_based"); err != nil {
		return opts, err
	}
	return opts, nil
}
