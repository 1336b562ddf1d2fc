package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

// InteractionRepository is the journal of submitted interactions and their
// delivery status.
type InteractionRepository struct {
	db *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *InteractionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS interaction_events (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	item TEXT NOT NULL,
	value INTEGER NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interaction_events_status ON interaction_events(status);
CREATE INDEX IF NOT EXISTS idx_interaction_events_user_id ON interaction_events(user_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *InteractionRepository) Create(ctx context.Context, interaction *domain.Interaction) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO interaction_events (id, user_id, item, value, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		interaction.ID, interaction.UserID, interaction.Item, interaction.Value,
		string(interaction.Status), interaction.CreatedAt, interaction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

func (r *InteractionRepository) GetByID(ctx context.Context, id string) (*domain.Interaction, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, item, value, status, created_at, updated_at
FROM interaction_events
WHERE id = $1
`, id)

	var interaction domain.Interaction
	var status string
	err := row.Scan(
		&interaction.ID, &interaction.UserID, &interaction.Item, &interaction.Value,
		&status, &interaction.CreatedAt, &interaction.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrInteractionNotFound, "get interaction", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan interaction: %w", err)
	}
	interaction.Status = domain.InteractionStatus(status)
	return &interaction, nil
}

func (r *InteractionRepository) UpdateStatus(ctx context.Context, id string, status domain.InteractionStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE interaction_events
SET status = $2, updated_at = $3
WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update interaction status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update interaction rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrInteractionNotFound, "update interaction", fmt.Errorf("id=%s", id))
	}
	return nil
}
