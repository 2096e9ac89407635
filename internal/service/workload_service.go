package service

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lyceo/charge-api/internal/models"
	"github.com/lyceo/charge-api/pkg/config"
)

// WorkloadService turns dated assignments into load scores, status bands and
// conflict projections. Every method is a pure function of its inputs; the
// service holds configuration only and is safe for concurrent use.
type WorkloadService struct {
	cfg    config.WorkloadConfig
	logger *zap.Logger
}

// NewWorkloadService constructs the engine. Zero-valued thresholds or
// weights are replaced by the reference policy so a partially populated
// config never collapses every score into one band.
func NewWorkloadService(cfg config.WorkloadConfig, logger *zap.Logger) *WorkloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Weights == (config.WeightTable{}) {
		cfg.Weights = config.WeightTable{
			Homework: 1, Test: 3,
			HomeworkLight: 1, HomeworkMed: 2, HomeworkHeavy: 3,
			Quiz: 2, Control: 3, DST: 5, Exam: 7,
		}
	}
	if cfg.Daily == (config.Thresholds{}) {
		cfg.Daily = config.Thresholds{Light: 2, Medium: 4, Heavy: 6}
	}
	if cfg.Weekly == (config.Thresholds{}) {
		cfg.Weekly = config.Thresholds{Light: 8, Medium: 15, Heavy: 20}
	}
	return &WorkloadService{cfg: cfg, logger: logger}
}

// Weight returns the load points one assignment contributes. Sub-kinds use
// the richer table; without one the two-tier homework/test split applies.
// Unknown kinds fall back to the lowest tier.
func (s *WorkloadService) Weight(a models.Assignment) int {
	w := s.cfg.Weights
	switch a.SubKind {
	case models.SubKindLight:
		return w.HomeworkLight
	case models.SubKindMedium:
		return w.HomeworkMed
	case models.SubKindHeavy:
		return w.HomeworkHeavy
	case models.SubKindQuiz:
		return w.Quiz
	case models.SubKindControl:
		return w.Control
	case models.SubKindDST:
		return w.DST
	case models.SubKindExam:
		return w.Exam
	}
	if a.Kind == models.KindTest {
		return w.Test
	}
	return w.Homework
}

// DailyStatus classifies a daily score into its band.
func (s *WorkloadService) DailyStatus(score int) models.LoadStatus {
	return classify(score, s.cfg.Daily)
}

// WeeklyStatus classifies a weekly score into its band.
func (s *WorkloadService) WeeklyStatus(score int) models.LoadStatus {
	return classify(score, s.cfg.Weekly)
}

func classify(score int, t config.Thresholds) models.LoadStatus {
	switch {
	case score <= t.Light:
		return models.LoadLight
	case score <= t.Medium:
		return models.LoadMedium
	case score <= t.Heavy:
		return models.LoadHeavy
	default:
		return models.LoadCritical
	}
}

// DailyWorkload sums weights over one calendar day. Assignments with
// unresolvable due dates are skipped, never fatal.
func (s *WorkloadService) DailyWorkload(assignments []models.Assignment, date time.Time) models.DailySummary {
	items := make([]models.Assignment, 0)
	score := 0
	for _, a := range assignments {
		due, ok := a.ResolveDueDate()
		if !ok {
			continue
		}
		if !sameDay(due, date) {
			continue
		}
		items = append(items, a)
		score += s.Weight(a)
	}

	return models.DailySummary{
		Date:   formatDate(date),
		Score:  score,
		Status: s.DailyStatus(score),
		Count:  len(items),
		Items:  items,
	}
}

// WeeklyWorkload sums weights over the Monday-to-Sunday week containing the
// given date, with a per-day breakdown and a separate DST count.
func (s *WorkloadService) WeeklyWorkload(assignments []models.Assignment, dateInWeek time.Time) models.WeeklySummary {
	start := weekStart(dateInWeek)
	end := weekEnd(dateInWeek)
	_, weekNumber := dateInWeek.ISOWeek()

	items := make([]models.Assignment, 0)
	score := 0
	dstCount := 0
	for _, a := range assignments {
		due, ok := a.ResolveDueDate()
		if !ok {
			continue
		}
		if due.Before(start) || due.After(end) {
			continue
		}
		items = append(items, a)
		score += s.Weight(a)
		if a.SubKind == models.SubKindDST {
			dstCount++
		}
	}

	breakdown := make([]models.DailySummary, 0, 7)
	for i := 0; i < 7; i++ {
		breakdown = append(breakdown, s.DailyWorkload(assignments, start.AddDate(0, 0, i)))
	}

	return models.WeeklySummary{
		WeekNumber:     weekNumber,
		WeekStart:      formatDate(start),
		WeekEnd:        formatDate(end),
		Score:          score,
		Status:         s.WeeklyStatus(score),
		Count:          len(items),
		Items:          items,
		DailyBreakdown: breakdown,
		DSTCount:       dstCount,
	}
}

// CheckConflicts projects the daily and weekly load that adding the
// candidate would produce and grades the result. The report never blocks
// insertion; CanAdd is advice for the caller.
func (s *WorkloadService) CheckConflicts(existing []models.Assignment, candidate models.Assignment) models.ConflictReport {
	due, ok := candidate.ResolveDueDate()
	if !ok {
		// Nothing to project against; the caller validates dates on intake.
		return models.ConflictReport{CanAdd: true, Warnings: []models.Warning{}}
	}

	weight := s.Weight(candidate)

	daily := s.DailyWorkload(existing, due)
	projectedDaily := daily.Score + weight
	dailyStatus := s.DailyStatus(projectedDaily)

	weekly := s.WeeklyWorkload(existing, due)
	projectedWeekly := weekly.Score + weight
	weeklyStatus := s.WeeklyStatus(projectedWeekly)

	prevDay := s.DailyWorkload(existing, due.AddDate(0, 0, -1))
	nextDay := s.DailyWorkload(existing, due.AddDate(0, 0, 1))

	warnings := []models.Warning{}

	switch dailyStatus {
	case models.LoadHeavy:
		warnings = append(warnings, models.Warning{
			Type:     models.WarningDailyOverload,
			Severity: models.SeverityHigh,
			Message:  fmt.Sprintf("daily overload: projected score %d (threshold %d)", projectedDaily, s.cfg.Daily.Heavy),
			Items:    daily.Items,
		})
	case models.LoadCritical:
		warnings = append(warnings, models.Warning{
			Type:     models.WarningDailyCritical,
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("critical load on %s: projected score %d, strongly discouraged", daily.Date, projectedDaily),
			Items:    daily.Items,
		})
	}

	if weeklyStatus == models.LoadHeavy || weeklyStatus == models.LoadCritical {
		warnings = append(warnings, models.Warning{
			Type:     models.WarningWeeklyOverload,
			Severity: models.SeverityMedium,
			Message:  fmt.Sprintf("week already loaded: projected score %d (threshold %d)", projectedWeekly, s.cfg.Weekly.Heavy),
		})
	}

	if prevDay.Status == models.LoadHeavy || prevDay.Status == models.LoadCritical {
		warnings = append(warnings, models.Warning{
			Type:     models.WarningAdjacentDay,
			Severity: models.SeverityLow,
			Message:  fmt.Sprintf("the day before is already loaded (score %d)", prevDay.Score),
			Dates:    []string{prevDay.Date},
		})
	}
	if nextDay.Status == models.LoadHeavy || nextDay.Status == models.LoadCritical {
		warnings = append(warnings, models.Warning{
			Type:     models.WarningAdjacentDay,
			Severity: models.SeverityLow,
			Message:  fmt.Sprintf("the day after is already loaded (score %d)", nextDay.Score),
			Dates:    []string{nextDay.Date},
		})
	}

	return models.ConflictReport{
		CanAdd:               dailyStatus != models.LoadCritical,
		DailyStatus:          dailyStatus,
		WeeklyStatus:         weeklyStatus,
		ProjectedDailyScore:  projectedDaily,
		ProjectedWeeklyScore: projectedWeekly,
		Warnings:             warnings,
		HasHighSeverity:      hasSeverity(warnings, models.SeverityHigh, models.SeverityCritical),
	}
}

// Stats summarises workload over an arbitrary period: totals, peak days,
// band counts and per-subject contribution.
func (s *WorkloadService) Stats(assignments []models.Assignment, start, end time.Time) models.WorkloadStats {
	startDay := dayStart(start)
	endDay := dayStart(end)
	if endDay.Before(startDay) {
		startDay, endDay = endDay, startDay
	}
	days := int(endDay.Sub(startDay).Hours()/24) + 1

	inPeriod := make([]models.Assignment, 0, len(assignments))
	bySubject := make(map[string]models.SubjectStats)
	for _, a := range assignments {
		due, ok := a.ResolveDueDate()
		if !ok || due.Before(startDay) || due.After(endDay) {
			continue
		}
		inPeriod = append(inPeriod, a)
		subject := a.Subject
		if subject == "" {
			subject = "other"
		}
		stats := bySubject[subject]
		stats.Count++
		stats.TotalWeight += s.Weight(a)
		bySubject[subject] = stats
	}

	dailyScores := make([]models.DailySummary, 0, days)
	totalScore := 0
	overloadDays := 0
	statusCounts := make(map[models.LoadStatus]int)
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		summary := s.DailyWorkload(inPeriod, d)
		dailyScores = append(dailyScores, summary)
		totalScore += summary.Score
		statusCounts[summary.Status]++
		if summary.Status == models.LoadHeavy || summary.Status == models.LoadCritical {
			overloadDays++
		}
	}

	peaks := make([]models.DailySummary, len(dailyScores))
	copy(peaks, dailyScores)
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].Score > peaks[j].Score })
	if len(peaks) > 5 {
		peaks = peaks[:5]
	}
	topPeaks := make([]models.DailySummary, 0, len(peaks))
	for _, p := range peaks {
		if p.Score > 0 {
			topPeaks = append(topPeaks, p)
		}
	}

	average := 0.0
	if days > 0 {
		average = float64(totalScore) / float64(days)
	}

	return models.WorkloadStats{
		Start:            formatDate(startDay),
		End:              formatDate(endDay),
		Days:             days,
		TotalAssignments: len(inPeriod),
		TotalScore:       totalScore,
		AverageDailyLoad: average,
		PeakDays:         topPeaks,
		StatusCounts:     statusCounts,
		BySubject:        bySubject,
		OverloadDays:     overloadDays,
	}
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func hasSeverity(warnings []models.Warning, severities ...models.Severity) bool {
	for _, w := range warnings {
		for _, sev := range severities {
			if w.Severity == sev {
				return true
			}
		}
	}
	return false
}
