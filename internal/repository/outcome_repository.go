package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/domain"
)

// OutcomeRepository persists delivery outcomes and answers which
// identifiers have already been ingested successfully.
type OutcomeRepository interface {
	Insert(ctx context.Context, outcome domain.DeliveryOutcome) error
	IngestedIdentifiers(ctx context.Context) (map[string]struct{}, error)
}

type outcomeRepository struct {
	pool *pgxpool.Pool
}

// NewOutcomeRepository builds repository.
func NewOutcomeRepository(pool *pgxpool.Pool) OutcomeRepository {
	return &outcomeRepository{pool: pool}
}

func (r *outcomeRepository) Insert(ctx context.Context, outcome domain.DeliveryOutcome) error {
	const query = `
        INSERT INTO delivery_outcomes (identifier, status, response_text, error_message, recorded_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, query,
		outcome.Identifier,
		string(outcome.Status),
		outcome.ResponseText,
		outcome.ErrorMessage,
		outcome.Timestamp,
	)
	return err
}

func (r *outcomeRepository) IngestedIdentifiers(ctx context.Context) (map[string]struct{}, error) {
	const query = `
        SELECT DISTINCT identifier FROM delivery_outcomes WHERE status=$1`
	rows, err := r.pool.Query(ctx, query, string(domain.OutcomeSuccess))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]struct{})
	for rows.Next() {
		var identifier string
		if err := rows.Scan(&identifier); err != nil {
			return nil, err
		}
		result[identifier] = struct{}{}
	}
	return result, rows.Err()
}
