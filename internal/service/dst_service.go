package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lyceo/charge-api/internal/models"
	"github.com/lyceo/charge-api/pkg/cache"
	appErrors "github.com/lyceo/charge-api/pkg/errors"
	"github.com/lyceo/charge-api/pkg/export"
	"github.com/lyceo/charge-api/pkg/jobs"
	"github.com/lyceo/charge-api/pkg/storage"
)

const (
	dstCachePrefix = "dst:"
	auditCacheKey  = dstCachePrefix + "audit"

	// JobTypeAudit recomputes the schedule audit after DST writes.
	JobTypeAudit = "dst_schedule_audit"
)

type dstRepository interface {
	List(ctx context.Context) ([]models.DST, error)
	Create(ctx context.Context, dst *models.DST) error
	Delete(ctx context.Context, id string) error
}

// CreateDSTRequest captures a manually authored exam sitting.
type CreateDSTRequest struct {
	Date      string   `json:"date" validate:"required"`
	Subject   string   `json:"subject" validate:"required"`
	Classes   []string `json:"classes" validate:"required,min=1"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Room      string   `json:"room"`
}

// DSTService owns the supervised-exam calendar: intake, heuristic import,
// auditing, reschedule suggestions and planning exports.
type DSTService struct {
	repo      dstRepository
	schedule  *DSTScheduleService
	parser    *DSTParserService
	queue     *jobs.Queue
	cache     *cache.SummaryCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger

	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	archive *storage.LocalStorage
}

// NewDSTService constructs the service. Queue and cache may be nil; both
// degrade to synchronous, uncached behaviour.
func NewDSTService(repo dstRepository, schedule *DSTScheduleService, parser *DSTParserService, queue *jobs.Queue, summaries *cache.SummaryCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *DSTService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DSTService{
		repo:      repo,
		schedule:  schedule,
		parser:    parser,
		queue:     queue,
		cache:     summaries,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// AttachQueue wires the background audit queue after construction. The queue
// handler is the service's own RunAuditJob, so both sides need the other.
func (s *DSTService) AttachQueue(queue *jobs.Queue) {
	s.queue = queue
}

// AttachArchive keeps a copy of every generated planning export on disk.
func (s *DSTService) AttachArchive(store *storage.LocalStorage) {
	s.archive = store
}

// List returns all exam sittings.
func (s *DSTService) List(ctx context.Context) ([]models.DST, error) {
	dsts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list DSTs")
	}
	return dsts, nil
}

// Create stores a manually authored sitting and schedules an audit pass.
func (s *DSTService) Create(ctx context.Context, req CreateDSTRequest) (*models.DST, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid DST payload")
	}
	if _, ok := models.ResolveDate(req.Date); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is not a resolvable calendar date")
	}

	classes := make([]string, 0, len(req.Classes))
	for _, c := range req.Classes {
		classes = append(classes, strings.ToUpper(strings.TrimSpace(c)))
	}

	dst := &models.DST{
		ID:        uuid.NewString(),
		Date:      req.Date,
		Subject:   req.Subject,
		Classes:   classes,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Room:      req.Room,
		Source:    "manual",
	}
	if err := s.repo.Create(ctx, dst); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create DST")
	}

	s.afterWrite(ctx, dst.ID)
	return dst, nil
}

// Import runs the heuristic extractor over raw planning text and persists
// every synthesized record. An extraction that finds nothing is reported as
// a low-confidence signal, not an internal failure.
func (s *DSTService) Import(ctx context.Context, rawText string) ([]models.DST, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "document text is required")
	}

	records := s.parser.Parse(rawText)
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyExtraction, "")
	}
	s.metrics.ObserveExtraction(len(records))

	stored := make([]models.DST, 0, len(records))
	for i := range records {
		if err := s.repo.Create(ctx, &records[i]); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist imported DST")
		}
		stored = append(stored, records[i])
	}

	s.afterWrite(ctx, fmt.Sprintf("import-%d", len(stored)))
	return stored, nil
}

// Delete removes a sitting and schedules an audit pass.
func (s *DSTService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete DST")
	}
	s.afterWrite(ctx, id)
	return nil
}

// Audit scans the full calendar for unsafe spacing patterns.
func (s *DSTService) Audit(ctx context.Context) (*models.ScheduleAudit, error) {
	cached := &models.ScheduleAudit{}
	if hit, err := s.cache.Get(ctx, auditCacheKey, cached); err == nil && hit {
		s.metrics.ObserveCache(true)
		return cached, nil
	}
	s.metrics.ObserveCache(false)

	dsts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load DSTs")
	}
	audit := s.schedule.AuditSchedule(dsts)
	s.metrics.RecordAudit(audit)
	if err := s.cache.Set(ctx, auditCacheKey, audit); err != nil {
		s.logger.Warn("failed to cache schedule audit", zap.Error(err))
	}
	return &audit, nil
}

// Suggestions proposes reschedule dates around the preferred one.
func (s *DSTService) Suggestions(ctx context.Context, preferred time.Time, rangeWeeks int) ([]models.DateSuggestion, error) {
	dsts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load DSTs")
	}
	return s.schedule.SuggestDates(dsts, preferred, rangeWeeks), nil
}

// Export renders the calendar as a planning document. Format is "csv" or
// "pdf".
func (s *DSTService) Export(ctx context.Context, format string) ([]byte, string, error) {
	dsts, err := s.repo.List(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load DSTs")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Subject", "Classes", "Start", "End", "Room"},
	}
	for _, d := range dsts {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    d.Date,
			"Subject": d.Subject,
			"Classes": strings.Join(d.Classes, " "),
			"Start":   d.StartTime,
			"End":     d.EndTime,
			"Room":    d.Room,
		})
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	var payload []byte
	var filename string
	switch format {
	case "csv":
		payload, err = s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV export")
		}
		filename = fmt.Sprintf("planning-dst-%s.csv", stamp)
	case "", "pdf":
		payload, err = s.pdf.Render(dataset, "Planning DST", fmt.Sprintf("%d sittings", len(dsts)))
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF export")
		}
		filename = fmt.Sprintf("planning-dst-%s.pdf", stamp)
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}

	if s.archive != nil {
		if _, err := s.archive.Save(filename, payload); err != nil {
			s.logger.Warn("failed to archive planning export", zap.Error(err))
		}
	}
	return payload, filename, nil
}

// RunAuditJob is the queue handler recomputing the audit after writes. It
// refreshes the cached audit and the severity gauges, and logs every
// high-severity finding so overloads surface in operations before a teacher
// opens the dashboard.
func (s *DSTService) RunAuditJob(ctx context.Context, job jobs.Job) error {
	dsts, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("audit job: load DSTs: %w", err)
	}
	audit := s.schedule.AuditSchedule(dsts)
	s.metrics.RecordAudit(audit)
	if err := s.cache.Set(ctx, auditCacheKey, audit); err != nil {
		s.logger.Warn("audit job: failed to refresh cache", zap.Error(err))
	}
	for _, w := range audit.Warnings {
		if w.Severity == models.SeverityHigh || w.Severity == models.SeverityCritical {
			s.logger.Warn("schedule audit finding",
				zap.String("type", string(w.Type)),
				zap.String("severity", string(w.Severity)),
				zap.String("message", w.Message),
			)
		}
	}
	return nil
}

func (s *DSTService) afterWrite(ctx context.Context, ref string) {
	if err := s.cache.InvalidatePrefix(ctx, dstCachePrefix); err != nil {
		s.logger.Warn("failed to invalidate DST cache", zap.Error(err))
	}
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(jobs.Job{ID: ref, Type: JobTypeAudit}); err != nil {
		s.logger.Warn("failed to enqueue audit job", zap.Error(err))
	}
}
