package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lyceo/charge-api/internal/models"
	"github.com/lyceo/charge-api/pkg/cache"
	appErrors "github.com/lyceo/charge-api/pkg/errors"
)

const assignmentCachePrefix = "workload:"

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	SetDone(ctx context.Context, id string, done bool) error
}

// CreateAssignmentRequest captures the intake payload. The due date is
// validated here; once stored, aggregation tolerates whatever it finds.
type CreateAssignmentRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=homework test"`
	SubKind string `json:"sub_kind" validate:"omitempty,oneof=light medium heavy quiz control dst exam"`
	DueDate string `json:"due_date" validate:"required"`
	ClassID string `json:"class_id" validate:"required"`
	Subject string `json:"subject"`
}

// AssignmentService owns assignment intake and exposes the workload engine
// over the stored collection. Summaries are cached caller-side; every write
// invalidates the cache.
type AssignmentService struct {
	repo      assignmentRepository
	workload  *WorkloadService
	cache     *cache.SummaryCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(repo assignmentRepository, workload *WorkloadService, summaries *cache.SummaryCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, workload: workload, cache: summaries, metrics: metrics, validator: validate, logger: logger}
}

// List returns assignments for the filter.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	assignments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Create validates and stores a new assignment, returning the conflict
// report computed against the existing collection. Overload never blocks
// the write; the report is advice for the caller.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, *models.ConflictReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if _, ok := models.ResolveDate(req.DueDate); !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "due_date is not a resolvable calendar date")
	}

	assignment := &models.Assignment{
		ID:      uuid.NewString(),
		Kind:    models.AssignmentKind(req.Kind),
		SubKind: models.AssignmentSubKind(req.SubKind),
		DueDate: req.DueDate,
		ClassID: req.ClassID,
		Subject: req.Subject,
	}

	existing, err := s.repo.List(ctx, models.AssignmentFilter{ClassID: req.ClassID})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing assignments")
	}
	report := s.workload.CheckConflicts(existing, *assignment)

	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	if report.HasHighSeverity {
		s.logger.Warn("assignment created despite overload",
			zap.String("assignment_id", assignment.ID),
			zap.String("due_date", assignment.DueDate),
			zap.Int("projected_daily_score", report.ProjectedDailyScore),
		)
	}

	s.invalidate(ctx)
	return assignment, &report, nil
}

// SetDone flips completion state; scoring is unaffected, so the cache is
// left alone.
func (s *AssignmentService) SetDone(ctx context.Context, id string, done bool) error {
	if err := s.repo.SetDone(ctx, id, done); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	return nil
}

// CheckConflicts runs a dry-run projection without persisting anything.
func (s *AssignmentService) CheckConflicts(ctx context.Context, req CreateAssignmentRequest) (*models.ConflictReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	existing, err := s.repo.List(ctx, models.AssignmentFilter{ClassID: req.ClassID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing assignments")
	}
	candidate := models.Assignment{
		Kind:    models.AssignmentKind(req.Kind),
		SubKind: models.AssignmentSubKind(req.SubKind),
		DueDate: req.DueDate,
	}
	report := s.workload.CheckConflicts(existing, candidate)
	return &report, nil
}

// Daily computes the load summary of one calendar day.
func (s *AssignmentService) Daily(ctx context.Context, classID string, date time.Time) (*models.DailySummary, error) {
	key := assignmentCachePrefix + "daily:" + classID + ":" + date.Format("2006-01-02")
	cached := &models.DailySummary{}
	if hit, err := s.cache.Get(ctx, key, cached); err == nil && hit {
		s.metrics.ObserveCache(true)
		return cached, nil
	}
	s.metrics.ObserveCache(false)

	assignments, err := s.repo.List(ctx, models.AssignmentFilter{ClassID: classID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	summary := s.workload.DailyWorkload(assignments, date)
	if err := s.cache.Set(ctx, key, summary); err != nil {
		s.logger.Warn("failed to cache daily summary", zap.Error(err))
	}
	return &summary, nil
}

// Weekly computes the load summary of the week containing the date.
func (s *AssignmentService) Weekly(ctx context.Context, classID string, date time.Time) (*models.WeeklySummary, error) {
	key := assignmentCachePrefix + "weekly:" + classID + ":" + date.Format("2006-01-02")
	cached := &models.WeeklySummary{}
	if hit, err := s.cache.Get(ctx, key, cached); err == nil && hit {
		s.metrics.ObserveCache(true)
		return cached, nil
	}
	s.metrics.ObserveCache(false)

	assignments, err := s.repo.List(ctx, models.AssignmentFilter{ClassID: classID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	summary := s.workload.WeeklyWorkload(assignments, date)
	if err := s.cache.Set(ctx, key, summary); err != nil {
		s.logger.Warn("failed to cache weekly summary", zap.Error(err))
	}
	return &summary, nil
}

// Stats summarises workload over a period.
func (s *AssignmentService) Stats(ctx context.Context, classID string, start, end time.Time) (*models.WorkloadStats, error) {
	assignments, err := s.repo.List(ctx, models.AssignmentFilter{ClassID: classID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	stats := s.workload.Stats(assignments, start, end)
	return &stats, nil
}

func (s *AssignmentService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidatePrefix(ctx, assignmentCachePrefix); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.Error(err))
	}
}
