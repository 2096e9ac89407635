package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lyceo/charge-api/internal/models"
)

// DSTRepository persists supervised-exam sittings.
type DSTRepository struct {
	db *sqlx.DB
}

// NewDSTRepository constructs a DST repository.
func NewDSTRepository(db *sqlx.DB) *DSTRepository {
	return &DSTRepository{db: db}
}

// List returns all sittings ordered by date.
func (r *DSTRepository) List(ctx context.Context) ([]models.DST, error) {
	const query = `SELECT id, date, subject, classes, start_time, end_time, room, source, created_at
FROM dsts ORDER BY date ASC, subject ASC`
	var dsts []models.DST
	if err := r.db.SelectContext(ctx, &dsts, query); err != nil {
		return nil, fmt.Errorf("list dsts: %w", err)
	}
	return dsts, nil
}

// Create inserts a new sitting.
func (r *DSTRepository) Create(ctx context.Context, dst *models.DST) error {
	if dst.ID == "" {
		dst.ID = uuid.NewString()
	}
	if dst.CreatedAt.IsZero() {
		dst.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO dsts (id, date, subject, classes, start_time, end_time, room, source, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET date = EXCLUDED.date, subject = EXCLUDED.subject, classes = EXCLUDED.classes,
start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time, room = EXCLUDED.room, source = EXCLUDED.source`
	if _, err := r.db.ExecContext(ctx, query,
		dst.ID, dst.Date, dst.Subject, pq.Array([]string(dst.Classes)),
		dst.StartTime, dst.EndTime, dst.Room, dst.Source, dst.CreatedAt,
	); err != nil {
		return fmt.Errorf("create dst: %w", err)
	}
	return nil
}

// Delete removes a sitting.
func (r *DSTRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dsts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dst: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("dst %s not found", id)
	}
	return nil
}
