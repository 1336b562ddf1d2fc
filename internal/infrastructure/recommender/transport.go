package recommender

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

const maxResponseBytes = 8 << 20

func (c *Client) get(ctx context.Context, req domain.Request) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+req.URL(), nil)
	if err != nil {
		return "", fmt.Errorf("create %s request: %w", req.Operation, err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("recommender %s request: %w", req.Operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newHTTPStatusError(req.Operation, resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", req.Operation, err)
	}
	if len(body) > maxResponseBytes {
		return "", fmt.Errorf("read %s response: body exceeds %d bytes", req.Operation, maxResponseBytes)
	}
	return string(body), nil
}

func newHTTPStatusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}
