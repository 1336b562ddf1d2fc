package recommender

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
	"github.com/kirillkom/recommender-gateway/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL        = "http://example.com"
	DefaultUserAgent      = "recommender-gateway (+https://github.com/kirillkom/recommender-gateway)"
	DefaultConnectTimeout = 30 * time.Second
	DefaultReadTimeout    = 30 * time.Second
)

// Observer receives one observation per upstream call.
type Observer interface {
	ObserveUpstream(operation, outcome string, duration time.Duration)
}

// Options configure the transport once at construction. Zero values keep
// the defaults.
type Options struct {
	BaseURL        string
	UserAgent      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	Executor *resilience.Executor
	Observer Observer
}

func (o Options) normalize() Options {
	out := o
	if strings.TrimSpace(out.BaseURL) == "" {
		out.BaseURL = DefaultBaseURL
	}
	out.BaseURL = strings.TrimRight(out.BaseURL, "/")
	if strings.TrimSpace(out.UserAgent) == "" {
		out.UserAgent = DefaultUserAgent
	}
	if out.ConnectTimeout <= 0 {
		out.ConnectTimeout = DefaultConnectTimeout
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = DefaultReadTimeout
	}
	return out
}

// Client is the HTTP transport to the recommendation engine. It performs a
// single GET per call and never retries.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	executor   *resilience.Executor
	observer   Observer
}

func New(baseURL string) *Client {
	return NewWithOptions(Options{BaseURL: baseURL})
}

func NewWithOptions(options Options) *Client {
	opts := options.normalize()

	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ReadTimeout,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Client{
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   opts.ConnectTimeout + opts.ReadTimeout,
		},
		executor: opts.Executor,
		observer: opts.Observer,
	}
}

// Get performs req and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, req domain.Request) (string, error) {
	operation := req.Operation
	if operation == "" {
		operation = "unknown"
	}

	start := time.Now()
	var body string
	call := func(callCtx context.Context) error {
		var err error
		body, err = c.get(callCtx, req)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "recommender."+operation, call, classifyRecommenderError)
	} else {
		err = call(ctx)
	}

	if c.observer != nil {
		c.observer.ObserveUpstream(operation, outcomeOf(err), time.Since(start))
	}
	if err != nil {
		return "", wrapTransportError(operation, err)
	}
	return body, nil
}
