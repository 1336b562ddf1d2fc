package nats

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

var errEmptyMessage = errors.New("empty interaction message")

func encodeEvent(event domain.InteractionEvent) ([]byte, error) {
	if strings.TrimSpace(event.ID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode interaction event", errors.New("id is required"))
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode interaction event %s: %w", event.ID, err)
	}
	return data, nil
}

func decodeEvent(data []byte) (domain.InteractionEvent, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return domain.InteractionEvent{}, errEmptyMessage
	}

	var event domain.InteractionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.InteractionEvent{}, fmt.Errorf("decode interaction event: %w", err)
	}
	event.ID = strings.TrimSpace(event.ID)
	if event.ID == "" {
		return domain.InteractionEvent{}, errors.New("interaction event without id")
	}
	return event, nil
}
