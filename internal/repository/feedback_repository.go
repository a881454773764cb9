// Package repository provides data access for the feedback store.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/pmlens/insights/internal/insighterrors"
	"github.com/pmlens/insights/internal/models"
)

// FeedbackRepository handles data access for the feedback table.
type FeedbackRepository struct {
	db *pgxpool.Pool
}

// NewFeedbackRepository creates a new feedback repository.
func NewFeedbackRepository(db *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// SearchNearest returns the topK feedback rows closest to queryEmbedding,
// restricted by the active filters, in ascending cosine-distance order.
// The result order is exactly the database's ranking order.
func (r *FeedbackRepository) SearchNearest(
	ctx context.Context, queryEmbedding []float32, topK int, filters models.SearchFilters,
) ([]models.EvidenceItem, error) {
	sql, args := buildSearchQuery(queryEmbedding, topK, filters)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, insighterrors.NewStoreError("search nearest", err)
	}
	defer rows.Close()

	var items []models.EvidenceItem

	for rows.Next() {
		var (
			id                                        uuid.UUID
			source, country, platform, userType, text *string
			rating                                    *int16
			similarity                                *float64
		)

		if err := rows.Scan(&id, &source, &country, &platform, &rating, &userType, &text, &similarity); err != nil {
			return nil, insighterrors.NewStoreError("scan evidence row", err)
		}

		items = append(items, newEvidenceItem(id, source, country, platform, rating, userType, text, similarity))
	}

	if err := rows.Err(); err != nil {
		return nil, insighterrors.NewStoreError("iterate evidence rows", err)
	}

	return items, nil
}

// Insert persists one feedback record with its embedding and returns the
// generated ID. Callers must not pass blank text; the table enforces it.
func (r *FeedbackRepository) Insert(ctx context.Context, rec *models.FeedbackRecord) (uuid.UUID, error) {
	var id uuid.UUID

	err := r.db.QueryRow(ctx, `
		INSERT INTO feedback (source, country, platform, rating, user_type, created_at, text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		rec.Source, rec.Country, rec.Platform, rec.Rating, rec.UserType, rec.CreatedAt, rec.Text,
		pgvector.NewVector(rec.Embedding),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, insighterrors.NewStoreError("insert feedback", err)
	}

	return id, nil
}

// DeleteBySource removes all rows with the given source label and returns the
// deleted count. The ingestion job uses it for idempotent reseeding.
func (r *FeedbackRepository) DeleteBySource(ctx context.Context, source string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM feedback WHERE source = $1`, source)
	if err != nil {
		return 0, insighterrors.NewStoreError("delete by source", err)
	}

	return tag.RowsAffected(), nil
}

// GetByID retrieves a single feedback record (without its embedding).
func (r *FeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FeedbackRecord, error) {
	var (
		rec       models.FeedbackRecord
		rating    *int16
		createdAt *time.Time
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, source, country, platform, rating, user_type, text, created_at
		FROM feedback
		WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.Source, &rec.Country, &rec.Platform, &rating, &rec.UserType, &rec.Text, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, insighterrors.NewNotFoundError("feedback", id.String())
	}

	if err != nil {
		return nil, insighterrors.NewStoreError("get feedback by id", err)
	}

	if rating != nil {
		v := int(*rating)
		rec.Rating = &v
	}

	rec.CreatedAt = createdAt

	return &rec, nil
}
