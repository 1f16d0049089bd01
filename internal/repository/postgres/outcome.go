package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/relaywire/dispatch-chain/internal/domain"
)

// OutcomeRepository implements domain.OutcomeRepository using PostgreSQL
type OutcomeRepository struct {
	db *DB
}

// NewOutcomeRepository creates a new OutcomeRepository
func NewOutcomeRepository(db *DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// Record inserts one delivery outcome.
func (r *OutcomeRepository) Record(ctx context.Context, o *domain.Outcome) error {
	query := `
		INSERT INTO delivery_outcomes (
			id, succeeded, status, channel, destination, body, error_detail, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	var errDetail *string
	if o.ErrorDetail != "" {
		errDetail = &o.ErrorDetail
	}

	_, err := r.db.Pool.Exec(ctx, query,
		o.ID, o.Succeeded, o.Status, o.Channel, o.Destination, o.Body,
		errDetail, o.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}

	return nil
}

// GetByID retrieves an outcome by ID
func (r *OutcomeRepository) GetByID(ctx context.Context, id string) (*domain.Outcome, error) {
	query := `
		SELECT id, succeeded, status, channel, destination, body, error_detail, created_at
		FROM delivery_outcomes
		WHERE id = $1
	`

	return r.scanOutcome(r.db.Pool.QueryRow(ctx, query, id))
}

// List lists outcomes with filters and pagination
func (r *OutcomeRepository) List(ctx context.Context, filter domain.OutcomeFilter) (*domain.OutcomeListResult, error) {
	conditions := []string{"1=1"}
	args := []any{}
	argIndex := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.Channel != nil {
		conditions = append(conditions, fmt.Sprintf("channel = $%d", argIndex))
		args = append(args, *filter.Channel)
		argIndex++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filter.StartDate)
		argIndex++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *filter.EndDate)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM delivery_outcomes WHERE %s", whereClause)
	var total int64
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT id, succeeded, status, channel, destination, body, error_detail, created_at
		FROM delivery_outcomes
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []*domain.Outcome{}
	for rows.Next() {
		o, err := r.scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outcomes: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &domain.OutcomeListResult{
		Outcomes:   outcomes,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (r *OutcomeRepository) scanOutcome(row pgx.Row) (*domain.Outcome, error) {
	var o domain.Outcome
	var errDetail *string

	err := row.Scan(
		&o.ID, &o.Succeeded, &o.Status, &o.Channel, &o.Destination, &o.Body,
		&errDetail, &o.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan outcome: %w", err)
	}

	if errDetail != nil {
		o.ErrorDetail = *errDetail
	}

	return &o, nil
}
