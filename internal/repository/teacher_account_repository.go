package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lyceo/charge-api/internal/models"
)

// TeacherAccountRepository persists staff logins.
type TeacherAccountRepository struct {
	db *sqlx.DB
}

// NewTeacherAccountRepository constructs a teacher account repository.
func NewTeacherAccountRepository(db *sqlx.DB) *TeacherAccountRepository {
	return &TeacherAccountRepository{db: db}
}

// FindByEmail fetches an account by email.
func (r *TeacherAccountRepository) FindByEmail(ctx context.Context, email string) (*models.TeacherAccount, error) {
	const query = `SELECT id, email, name, password_hash, active, last_login_at, created_at
FROM teacher_accounts WHERE email = $1`
	account := &models.TeacherAccount{}
	if err := r.db.GetContext(ctx, account, query, email); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateLastLogin records a successful login timestamp.
func (r *TeacherAccountRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE teacher_accounts SET last_login_at = $2 WHERE id = $1`, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
