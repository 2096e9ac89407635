package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lyceo/charge-api/internal/models"
)

// AssignmentRepository persists assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns assignments matching the filter, oldest due date first.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassID != "" {
		where = append(where, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Subject != "" {
		where = append(where, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("due_date >= $%d", len(args)+1))
		args = append(args, filter.From.Format("2006-01-02"))
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("due_date <= $%d", len(args)+1))
		args = append(args, filter.To.Format("2006-01-02"))
	}

	query := fmt.Sprintf(`SELECT id, kind, sub_kind, due_date, class_id, subject, done, created_at
FROM assignments WHERE %s ORDER BY due_date ASC, created_at ASC`, strings.Join(where, " AND "))

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, kind, sub_kind, due_date, class_id, subject, done, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		assignment.ID, assignment.Kind, assignment.SubKind, assignment.DueDate,
		assignment.ClassID, assignment.Subject, assignment.Done, assignment.CreatedAt,
	); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// SetDone updates completion state.
func (r *AssignmentRepository) SetDone(ctx context.Context, id string, done bool) error {
	const query = `UPDATE assignments SET done = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, done)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("assignment %s not found", id)
	}
	return nil
}
