package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

func TestInteractionRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	interaction := &domain.Interaction{
		ID: "i-1", UserID: "42", Item: "shoe-1", Value: 3,
		Status: domain.InteractionPending, CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectExec("INSERT INTO interaction_events").
		WithArgs("i-1", "42", "shoe-1", 3, "pending", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewInteractionRepository(db).Create(context.Background(), interaction); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInteractionRepositoryGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "user_id", "item", "value", "status", "created_at", "updated_at"}).
		AddRow("i-1", "42", "shoe-1", 3, "delivered", time.Now(), time.Now())
	mock.ExpectQuery("FROM interaction_events").
		WithArgs("i-1").
		WillReturnRows(rows)

	interaction, err := NewInteractionRepository(db).GetByID(context.Background(), "i-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if interaction.Status != domain.InteractionDelivered || interaction.Value != 3 {
		t.Fatalf("unexpected interaction %+v", interaction)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInteractionRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM interaction_events").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "item", "value", "status", "created_at", "updated_at"}))

	_, err = NewInteractionRepository(db).GetByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrInteractionNotFound) {
		t.Fatalf("expected ErrInteractionNotFound, got %v", err)
	}
}

func TestInteractionRepositoryUpdateStatusReturnsNotFoundWhenNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE interaction_events").
		WithArgs("missing", "failed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewInteractionRepository(db).UpdateStatus(context.Background(), "missing", domain.InteractionFailed)
	if !domain.IsKind(err, domain.ErrInteractionNotFound) {
		t.Fatalf("expected ErrInteractionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInteractionRepositoryUpdateStatusWrapsDBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	dbErr := errors.New("connection reset")
	mock.ExpectExec("UPDATE interaction_events").
		WithArgs("i-1", "delivered", sqlmock.AnyArg()).
		WillReturnError(dbErr)

	err = NewInteractionRepository(db).UpdateStatus(context.Background(), "i-1", domain.InteractionDelivered)
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestInteractionRepositoryEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS interaction_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := NewInteractionRepository(db).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
