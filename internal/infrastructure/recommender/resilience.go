package recommender

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
	"github.com/kirillkom/recommender-gateway/internal/infrastructure/resilience"
)

// HTTPStatusError is returned for every non-2xx engine response.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "recommender status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("recommender %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("recommender %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// IsClientError reports a 4xx response.
func (e *HTTPStatusError) IsClientError() bool {
	return e != nil && e.StatusCode >= 400 && e.StatusCode < 500
}

func classifyRecommenderError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) {
		return resilience.ErrorClassification{RecordFailure: false}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return resilience.ErrorClassification{RecordFailure: !statusErr.IsClientError()}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}

func isTemporary(err error) bool {
	if resilience.IsCircuitOpen(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == 408 || statusErr.StatusCode == 429
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func wrapTransportError(operation string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := domain.WrapError(domain.ErrTransport, "recommender "+operation, err)
	if isTemporary(err) {
		return domain.WrapError(domain.ErrTemporary, "recommender "+operation, wrapped)
	}
	return wrapped
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	if resilience.IsCircuitOpen(err) {
		return "circuit_open"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.IsClientError() {
			return "client_error"
		}
		return "server_error"
	}
	return "network_error"
}
