package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
	"github.com/kirillkom/recommender-gateway/internal/core/ports"
	"github.com/kirillkom/recommender-gateway/internal/core/validate"
)

// InteractionService journals interactions, hands them to the queue and,
// on the worker side, forwards each one to the engine exactly once.
type InteractionService struct {
	repo     ports.InteractionRepository
	queue    ports.InteractionQueue
	ingestor ports.Ingestor
}

func NewInteractionService(
	repo ports.InteractionRepository,
	queue ports.InteractionQueue,
	ingestor ports.Ingestor,
) *InteractionService {
	return &InteractionService{
		repo:     repo,
		queue:    queue,
		ingestor: ingestor,
	}
}

func (s *InteractionService) Submit(ctx context.Context, userID, item string, value int) (*domain.Interaction, error) {
	if err := validateInteraction(userID, item, value); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	interaction := &domain.Interaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Item:      item,
		Value:     value,
		Status:    domain.InteractionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, interaction); err != nil {
		return nil, fmt.Errorf("create interaction record: %w", err)
	}
	if err := s.queue.PublishInteraction(ctx, domain.InteractionEvent{ID: interaction.ID, SubmittedAt: now}); err != nil {
		// Nothing will consume this record.
		if markErr := s.repo.UpdateStatus(ctx, interaction.ID, domain.InteractionFailed); markErr != nil {
			return nil, fmt.Errorf("publish interaction event: %w; mark failed status: %v", err, markErr)
		}
		return nil, fmt.Errorf("publish interaction event: %w", err)
	}
	return interaction, nil
}

func (s *InteractionService) GetByID(ctx context.Context, id string) (*domain.Interaction, error) {
	return s.repo.GetByID(ctx, id)
}

// DeliverByID forwards a pending interaction. Interactions that already left
// the pending state are skipped so a redelivered message never ingests twice.
func (s *InteractionService) DeliverByID(ctx context.Context, interactionID string) error {
	interaction, err := s.repo.GetByID(ctx, interactionID)
	if err != nil {
		return fmt.Errorf("fetch interaction by id: %w", err)
	}
	if interaction.Status != domain.InteractionPending {
		slog.Info("interaction_already_handled", "interaction_id", interactionID, "status", interaction.Status)
		return nil
	}

	ok, err := s.ingestor.Ingest(ctx, interaction.UserID, interaction.Item, interaction.Value)
	if err != nil {
		if markErr := s.repo.UpdateStatus(ctx, interactionID, domain.InteractionRejected); markErr != nil {
			return fmt.Errorf("%w; mark rejected status: %v", err, markErr)
		}
		return err
	}

	status := domain.InteractionDelivered
	if !ok {
		status = domain.InteractionFailed
	}
	if err := s.repo.UpdateStatus(ctx, interactionID, status); err != nil {
		return fmt.Errorf("set status=%s: %w", status, err)
	}

	slog.Info("interaction_delivered", "interaction_id", interactionID, "status", status)
	return nil
}

func validateInteraction(userID, item string, value int) error {
	if err := validate.RequireNumeric(userID, "user_id"); err != nil {
		return err
	}
	if err := validate.RequireNonEmptyAlpha(item, "item"); err != nil {
		return err
	}
	return validate.RequireInRange(value, minSignalValue, maxSignalValue, "value")
}
