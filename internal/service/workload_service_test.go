package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyceo/charge-api/internal/models"
	"github.com/lyceo/charge-api/pkg/config"
)

func newTestWorkload() *WorkloadService {
	return NewWorkloadService(config.WorkloadConfig{}, nil)
}

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", raw)
	require.NoError(t, err)
	return parsed
}

func TestWeightTwoTierFallback(t *testing.T) {
	svc := newTestWorkload()

	tests := []struct {
		name       string
		assignment models.Assignment
		expected   int
	}{
		{"homework without sub-kind", models.Assignment{Kind: models.KindHomework}, 1},
		{"test without sub-kind", models.Assignment{Kind: models.KindTest}, 3},
		{"light homework", models.Assignment{Kind: models.KindHomework, SubKind: models.SubKindLight}, 1},
		{"medium homework", models.Assignment{Kind: models.KindHomework, SubKind: models.SubKindMedium}, 2},
		{"heavy homework", models.Assignment{Kind: models.KindHomework, SubKind: models.SubKindHeavy}, 3},
		{"quiz", models.Assignment{Kind: models.KindTest, SubKind: models.SubKindQuiz}, 2},
		{"control", models.Assignment{Kind: models.KindTest, SubKind: models.SubKindControl}, 3},
		{"dst", models.Assignment{Kind: models.KindTest, SubKind: models.SubKindDST}, 5},
		{"exam", models.Assignment{Kind: models.KindTest, SubKind: models.SubKindExam}, 7},
		{"unknown kind", models.Assignment{Kind: "project"}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, svc.Weight(tc.assignment))
		})
	}
}

func TestDailyWorkloadTwoTestsIsHeavy(t *testing.T) {
	svc := newTestWorkload()
	assignments := []models.Assignment{
		{ID: "a1", Kind: models.KindTest, DueDate: "2025-01-10", Subject: "MATHEMATIQUES"},
		{ID: "a2", Kind: models.KindTest, DueDate: "2025-01-10", Subject: "SVT"},
	}

	summary := svc.DailyWorkload(assignments, mustDate(t, "2025-01-10"))

	assert.Equal(t, 6, summary.Score)
	assert.Equal(t, models.LoadHeavy, summary.Status)
	assert.Equal(t, 2, summary.Count)
	assert.Len(t, summary.Items, 2)
}

func TestDailyWorkloadExtraHomeworkTipsCritical(t *testing.T) {
	svc := newTestWorkload()
	assignments := []models.Assignment{
		{ID: "a1", Kind: models.KindTest, DueDate: "2025-01-10"},
		{ID: "a2", Kind: models.KindTest, DueDate: "2025-01-10"},
		{ID: "a3", Kind: models.KindHomework, DueDate: "2025-01-10"},
	}

	summary := svc.DailyWorkload(assignments, mustDate(t, "2025-01-10"))

	assert.Equal(t, 7, summary.Score)
	assert.Equal(t, models.LoadCritical, summary.Status)
}

func TestDailyWorkloadSkipsMalformedDates(t *testing.T) {
	svc := newTestWorkload()
	assignments := []models.Assignment{
		{ID: "a1", Kind: models.KindTest, DueDate: "2025-01-10"},
		{ID: "a2", Kind: models.KindTest, DueDate: "not-a-date"},
		{ID: "a3", Kind: models.KindTest, DueDate: ""},
	}

	summary := svc.DailyWorkload(assignments, mustDate(t, "2025-01-10"))

	assert.Equal(t, 3, summary.Score)
	assert.Equal(t, 1, summary.Count)
}

func TestDailyWorkloadAcceptsTimestampDueDates(t *testing.T) {
	svc := newTestWorkload()
	assignments := []models.Assignment{
		{ID: "a1", Kind: models.KindHomework, DueDate: "2025-01-10T15:04:05Z"},
	}

	summary := svc.DailyWorkload(assignments, mustDate(t, "2025-01-10"))

	assert.Equal(t, 1, summary.Score)
	assert.Equal(t, 1, summary.Count)
}

func TestDailyWorkloadEmptyInput(t *testing.T) {
	svc := newTestWorkload()

	summary := svc.DailyWorkload(nil, mustDate(t, "2025-01-10"))

	assert.Equal(t, 0, summary.Score)
	assert.Equal(t, models.LoadLight, summary.Status)
	assert.NotNil(t, summary.Items)
	assert.Empty(t, summary.Items)
}

func TestWeeklyWorkloadEqualsSumOfDailies(t *testing.T) {
	svc := newTestWorkload()
	// 2025-01-06 is a Monday.
	assignments := []models.Assignment{
		{ID: "a1", Kind: models.KindHomework, DueDate: "2025-01-06"},
		{ID: "a2", Kind: models.KindTest, DueDate: "2025-01-08"},
		{ID: "a3", Kind: models.KindTest, SubKind: models.SubKindDST, DueDate: "2025-01-11"},
		{ID: "a4", Kind: models.KindHomework, DueDate: "2025-01-12"},
		{ID: "out", Kind: models.KindTest, DueDate: "2025-01-13"},
	}

	weekly := svc.WeeklyWorkload(assignments, mustDate(t, "2025-01-08"))

	require.Len(t, weekly.DailyBreakdown, 7)
	sum := 0
	for _, day := range weekly.DailyBreakdown {
		sum += day.Score
	}
	assert.Equal(t, weekly.Score, sum)
	assert.Equal(t, 10, weekly.Score)
	assert.Equal(t, "2025-01-06", weekly.WeekStart)
	assert.Equal(t, "2025-01-12", weekly.WeekEnd)
	assert.Equal(t, 2, weekly.WeekNumber)
	assert.Equal(t, 1, weekly.DSTCount)
	assert.Equal(t, 4, weekly.Count)
}

func TestWeeklyWorkloadSameForAnyDayInWeek(t *testing.T) {
	svc := newTestWorkload()
	assignments := []models.Assignment{
		{ID: "a1", Kind: models.KindTest, DueDate: "2025-01-07"},
		{ID: "a2", Kind: models.KindHomework, DueDate: "2025-01-10"},
	}

	monday := svc.WeeklyWorkload(assignments, mustDate(t, "2025-01-06"))
	sunday := svc.WeeklyWorkload(assignments, mustDate(t, "2025-01-12"))

	assert.Equal(t, monday.Score, sunday.Score)
	assert.Equal(t, monday.WeekStart, sunday.WeekStart)
}

func TestWorkloadIsIdempotent(t *testing.T) {
	svc := newTestWorkload()
	assignments := []models.Assignment{
		{ID: "a1", Kind: models.KindTest, DueDate: "2025-01-10"},
		{ID: "a2", Kind: models.KindHomework, DueDate: "2025-01-10"},
	}

	first := svc.DailyWorkload(assignments, mustDate(t, "2025-01-10"))
	second := svc.DailyWorkload(assignments, mustDate(t, "2025-01-10"))

	assert.Equal(t, first, second)
}

func TestWorkloadScoreIsMonotonic(t *testing.T) {
	svc := newTestWorkload()
	date := mustDate(t, "2025-01-10")

	assignments := []models.Assignment{}
	previous := 0
	for i := 0; i < 10; i++ {
		assignments = append(assignments, models.Assignment{Kind: models.KindHomework, DueDate: "2025-01-10"})
		score := svc.DailyWorkload(assignments, date).Score
		assert.Greater(t, score, previous)
		previous = score
	}
}

func TestCheckConflictsCriticalDayAdvisesAgainst(t *testing.T) {
	svc := newTestWorkload()
	existing := []models.Assignment{
		{ID: "a1", Kind: models.KindTest, DueDate: "2025-01-10"},
		{ID: "a2", Kind: models.KindTest, DueDate: "2025-01-10"},
	}
	candidate := models.Assignment{Kind: models.KindHomework, DueDate: "2025-01-10"}

	report := svc.CheckConflicts(existing, candidate)

	assert.False(t, report.CanAdd)
	assert.Equal(t, models.LoadCritical, report.DailyStatus)
	assert.Equal(t, 7, report.ProjectedDailyScore)
	assert.True(t, report.HasHighSeverity)

	var found bool
	for _, w := range report.Warnings {
		if w.Type == models.WarningDailyCritical {
			found = true
			assert.Equal(t, models.SeverityCritical, w.Severity)
		}
	}
	assert.True(t, found, "expected a DAILY_CRITICAL warning")
}

func TestCheckConflictsHeavyDayStillAllows(t *testing.T) {
	svc := newTestWorkload()
	existing := []models.Assignment{
		{ID: "a1", Kind: models.KindTest, DueDate: "2025-01-10"},
	}
	candidate := models.Assignment{Kind: models.KindTest, DueDate: "2025-01-10"}

	report := svc.CheckConflicts(existing, candidate)

	assert.True(t, report.CanAdd)
	assert.Equal(t, models.LoadHeavy, report.DailyStatus)
	assert.Equal(t, 6, report.ProjectedDailyScore)
	assert.True(t, report.HasHighSeverity)
}

func TestCheckConflictsFlagsLoadedAdjacentDays(t *testing.T) {
	svc := newTestWorkload()
	existing := []models.Assignment{
		{ID: "a1", Kind: models.KindTest, DueDate: "2025-01-09"},
		{ID: "a2", Kind: models.KindTest, DueDate: "2025-01-09"},
	}
	candidate := models.Assignment{Kind: models.KindHomework, DueDate: "2025-01-10"}

	report := svc.CheckConflicts(existing, candidate)

	assert.True(t, report.CanAdd)
	var adjacent *models.Warning
	for i := range report.Warnings {
		if report.Warnings[i].Type == models.WarningAdjacentDay {
			adjacent = &report.Warnings[i]
		}
	}
	require.NotNil(t, adjacent)
	assert.Equal(t, models.SeverityLow, adjacent.Severity)
	assert.Equal(t, []string{"2025-01-09"}, adjacent.Dates)
}

func TestCheckConflictsUnresolvableDateIsPermissive(t *testing.T) {
	svc := newTestWorkload()

	report := svc.CheckConflicts(nil, models.Assignment{Kind: models.KindTest, DueDate: "bogus"})

	assert.True(t, report.CanAdd)
	assert.Empty(t, report.Warnings)
}

func TestStatsAggregatesPeriod(t *testing.T) {
	svc := newTestWorkload()
	assignments := []models.Assignment{
		{ID: "a1", Kind: models.KindTest, DueDate: "2025-01-06", Subject: "MATHEMATIQUES"},
		{ID: "a2", Kind: models.KindTest, DueDate: "2025-01-06", Subject: "SVT"},
		{ID: "a3", Kind: models.KindHomework, DueDate: "2025-01-08", Subject: "MATHEMATIQUES"},
		{ID: "a4", Kind: models.KindHomework, DueDate: "2025-01-09"},
		{ID: "out", Kind: models.KindTest, DueDate: "2025-02-01"},
	}

	stats := svc.Stats(assignments, mustDate(t, "2025-01-06"), mustDate(t, "2025-01-12"))

	assert.Equal(t, 7, stats.Days)
	assert.Equal(t, 4, stats.TotalAssignments)
	assert.Equal(t, 8, stats.TotalScore)
	assert.Equal(t, 1, stats.OverloadDays)
	assert.InDelta(t, 8.0/7.0, stats.AverageDailyLoad, 1e-9)

	require.NotEmpty(t, stats.PeakDays)
	assert.Equal(t, "2025-01-06", stats.PeakDays[0].Date)
	assert.Equal(t, 6, stats.PeakDays[0].Score)

	maths := stats.BySubject["MATHEMATIQUES"]
	assert.Equal(t, 2, maths.Count)
	assert.Equal(t, 4, maths.TotalWeight)
	other := stats.BySubject["other"]
	assert.Equal(t, 1, other.Count)
}

func TestStatsSwapsInvertedBounds(t *testing.T) {
	svc := newTestWorkload()

	stats := svc.Stats(nil, mustDate(t, "2025-01-12"), mustDate(t, "2025-01-06"))

	assert.Equal(t, "2025-01-06", stats.Start)
	assert.Equal(t, "2025-01-12", stats.End)
	assert.Equal(t, 7, stats.Days)
}

func TestCustomThresholdsShiftBands(t *testing.T) {
	svc := NewWorkloadService(config.WorkloadConfig{
		Weights: config.WeightTable{Homework: 1, Test: 3, HomeworkLight: 1, HomeworkMed: 2, HomeworkHeavy: 3, Quiz: 2, Control: 3, DST: 5, Exam: 7},
		Daily:   config.Thresholds{Light: 5, Medium: 10, Heavy: 15},
		Weekly:  config.Thresholds{Light: 20, Medium: 30, Heavy: 40},
	}, nil)

	assert.Equal(t, models.LoadLight, svc.DailyStatus(5))
	assert.Equal(t, models.LoadMedium, svc.DailyStatus(6))
	assert.Equal(t, models.LoadHeavy, svc.DailyStatus(15))
	assert.Equal(t, models.LoadCritical, svc.DailyStatus(16))
}
