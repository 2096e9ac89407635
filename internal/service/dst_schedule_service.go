package service

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lyceo/charge-api/internal/models"
	"github.com/lyceo/charge-api/pkg/config"
)

// DSTScheduleService audits the supervised-exam calendar for unsafe spacing
// and proposes alternative dates. Like the workload engine it is stateless;
// every call is a pure function of its inputs.
type DSTScheduleService struct {
	rules    config.DSTConfig
	workload *WorkloadService
	logger   *zap.Logger
}

// NewDSTScheduleService constructs the auditor. Zero-valued rules take the
// institutional defaults: one DST per week, two weeks apart, at most two
// consecutive occurrences, Saturday sittings.
func NewDSTScheduleService(rules config.DSTConfig, workload *WorkloadService, logger *zap.Logger) *DSTScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules.MaxPerWeek <= 0 {
		rules.MaxPerWeek = 1
	}
	if rules.MinWeeksBetween <= 0 {
		rules.MinWeeksBetween = 2
	}
	if rules.MaxConsecutive <= 0 {
		rules.MaxConsecutive = 2
	}
	if rules.ExamWeekday == 0 {
		rules.ExamWeekday = time.Saturday
	}
	if rules.SuggestionWeeks <= 0 {
		rules.SuggestionWeeks = 4
	}
	if workload == nil {
		workload = NewWorkloadService(config.WorkloadConfig{}, logger)
	}
	return &DSTScheduleService{rules: rules, workload: workload, logger: logger}
}

// AuditSchedule scans all exam records, sorted ascending by date, and emits
// warnings for non-canonical weekdays, runs of consecutive weekly sittings,
// sittings scheduled too close together, and overloaded ISO weeks. Records
// with unresolvable dates are skipped.
func (s *DSTScheduleService) AuditSchedule(dsts []models.DST) models.ScheduleAudit {
	type dated struct {
		dst  models.DST
		date time.Time
	}
	sorted := make([]dated, 0, len(dsts))
	for _, d := range dsts {
		t, ok := d.ResolveDate()
		if !ok {
			continue
		}
		sorted = append(sorted, dated{dst: d, date: t})
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].date.Before(sorted[j].date) })

	warnings := []models.Warning{}

	// Consecutive-run scan over canonical-weekday records. A non-canonical
	// record is reported but leaves the run counter untouched; only an
	// actual gap between canonical sittings resets it.
	consecutive := 0
	var lastAnchor time.Time
	haveAnchor := false
	for _, entry := range sorted {
		if entry.date.Weekday() != s.rules.ExamWeekday {
			warnings = append(warnings, models.Warning{
				Type:     models.WarningNotExamDay,
				Severity: models.SeverityInfo,
				Message:  fmt.Sprintf("DST %q on %s is not scheduled on the canonical exam day", entry.dst.Subject, formatDate(entry.date)),
				DSTs:     []models.DST{entry.dst},
			})
			continue
		}

		if haveAnchor {
			daysDiff := int(entry.date.Sub(lastAnchor).Hours() / 24)
			switch {
			case daysDiff == 7:
				consecutive++
				if consecutive >= s.rules.MaxConsecutive {
					warnings = append(warnings, models.Warning{
						Type:     models.WarningConsecutive,
						Severity: models.SeverityHigh,
						Message:  fmt.Sprintf("%d consecutive exam days with a DST detected", consecutive+1),
						Dates:    []string{formatDate(lastAnchor), formatDate(entry.date)},
					})
				}
			case daysDiff < 7*s.rules.MinWeeksBetween:
				warnings = append(warnings, models.Warning{
					Type:     models.WarningTooClose,
					Severity: models.SeverityMedium,
					Message:  fmt.Sprintf("DST %q less than %d weeks after the previous one", entry.dst.Subject, s.rules.MinWeeksBetween),
					DSTs:     []models.DST{entry.dst},
				})
				consecutive = 0
			default:
				consecutive = 0
			}
		}

		lastAnchor = entry.date
		haveAnchor = true
	}

	// Independent per-week bucketing keyed by ISO (year, week).
	byWeek := make(map[string][]models.DST)
	for _, entry := range sorted {
		key := isoWeekKey(entry.date)
		byWeek[key] = append(byWeek[key], entry.dst)
		if len(byWeek[key]) > s.rules.MaxPerWeek {
			bucket := make([]models.DST, len(byWeek[key]))
			copy(bucket, byWeek[key])
			warnings = append(warnings, models.Warning{
				Type:     models.WarningTooManyPerWeek,
				Severity: models.SeverityHigh,
				Message:  fmt.Sprintf("week %s: %d DSTs scheduled (max recommended %d)", key, len(bucket), s.rules.MaxPerWeek),
				Week:     key,
				DSTs:     bucket,
			})
		}
	}

	return models.ScheduleAudit{
		Total:           len(dsts),
		Warnings:        warnings,
		ByWeek:          byWeek,
		HasHighSeverity: hasSeverity(warnings, models.SeverityHigh),
	}
}

// SuggestDates proposes reschedule candidates around the preferred date:
// one per week offset in [-rangeWeeks, rangeWeeks] excluding zero, snapped
// forward to the canonical exam weekday, skipping dates already occupied.
// Results are sorted recommended-first, then by ascending weekly load.
func (s *DSTScheduleService) SuggestDates(existing []models.DST, preferred time.Time, rangeWeeks int) []models.DateSuggestion {
	if rangeWeeks <= 0 {
		rangeWeeks = s.rules.SuggestionWeeks
	}

	occupied := make(map[string]struct{}, len(existing))
	asAssignments := make([]models.Assignment, 0, len(existing))
	for _, d := range existing {
		if t, ok := d.ResolveDate(); ok {
			occupied[formatDate(t)] = struct{}{}
		}
		asAssignments = append(asAssignments, d.AsAssignment())
	}

	suggestions := make([]models.DateSuggestion, 0, 2*rangeWeeks)
	for offset := -rangeWeeks; offset <= rangeWeeks; offset++ {
		if offset == 0 {
			continue
		}
		candidate := preferred.AddDate(0, 0, offset*7)
		if shift := (int(s.rules.ExamWeekday) - int(candidate.Weekday()) + 7) % 7; shift != 0 {
			candidate = candidate.AddDate(0, 0, shift)
		}
		if _, taken := occupied[formatDate(candidate)]; taken {
			continue
		}

		weekLoad := s.workload.WeeklyWorkload(asAssignments, candidate)
		_, weekNumber := candidate.ISOWeek()
		suggestions = append(suggestions, models.DateSuggestion{
			Date:         formatDate(candidate),
			WeekNumber:   weekNumber,
			ExistingLoad: weekLoad.Status,
			Score:        weekLoad.Score,
			Recommended:  weekLoad.Status == models.LoadLight,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Recommended != suggestions[j].Recommended {
			return suggestions[i].Recommended
		}
		return suggestions[i].Score < suggestions[j].Score
	})

	return suggestions
}
