package models

// LoadStatus is the banded classification of a load score.
type LoadStatus string

const (
	LoadLight    LoadStatus = "light"
	LoadMedium   LoadStatus = "medium"
	LoadHeavy    LoadStatus = "heavy"
	LoadCritical LoadStatus = "critical"
)

// Severity grades a scheduling warning.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// WarningType identifies the scheduling finding a warning carries.
type WarningType string

const (
	WarningNotExamDay     WarningType = "NOT_EXAM_DAY"
	WarningConsecutive    WarningType = "CONSECUTIVE"
	WarningTooClose       WarningType = "TOO_CLOSE"
	WarningTooManyPerWeek WarningType = "TOO_MANY_PER_WEEK"
	WarningDailyOverload  WarningType = "DAILY_OVERLOAD"
	WarningDailyCritical  WarningType = "DAILY_CRITICAL"
	WarningWeeklyOverload WarningType = "WEEKLY_OVERLOAD"
	WarningAdjacentDay    WarningType = "ADJACENT_DAY"
)

// Warning is pure output describing a scheduling concern. It never mutates
// the records it references; the decision stays with the caller.
type Warning struct {
	Type     WarningType  `json:"type"`
	Severity Severity     `json:"severity"`
	Message  string       `json:"message"`
	Dates    []string     `json:"dates,omitempty"`
	Week     string       `json:"week,omitempty"`
	DSTs     []DST        `json:"dsts,omitempty"`
	Items    []Assignment `json:"items,omitempty"`
}

// DailySummary is the load picture of a single calendar day.
type DailySummary struct {
	Date   string       `json:"date"`
	Score  int          `json:"score"`
	Status LoadStatus   `json:"status"`
	Count  int          `json:"count"`
	Items  []Assignment `json:"items"`
}

// WeeklySummary is the load picture of one ISO week, Monday through Sunday.
type WeeklySummary struct {
	WeekNumber     int            `json:"week_number"`
	WeekStart      string         `json:"week_start"`
	WeekEnd        string         `json:"week_end"`
	Score          int            `json:"score"`
	Status         LoadStatus     `json:"status"`
	Count          int            `json:"count"`
	Items          []Assignment   `json:"items"`
	DailyBreakdown []DailySummary `json:"daily_breakdown"`
	DSTCount       int            `json:"dst_count"`
}

// ConflictReport projects the effect of adding one assignment. CanAdd is
// advisory only; insertion is never blocked by the engine.
type ConflictReport struct {
	CanAdd               bool       `json:"can_add"`
	DailyStatus          LoadStatus `json:"daily_status"`
	WeeklyStatus         LoadStatus `json:"weekly_status"`
	ProjectedDailyScore  int        `json:"projected_daily_score"`
	ProjectedWeeklyScore int        `json:"projected_weekly_score"`
	Warnings             []Warning  `json:"warnings"`
	HasHighSeverity      bool       `json:"has_high_severity"`
}

// ScheduleAudit is the result of scanning the full DST schedule for unsafe
// spacing patterns.
type ScheduleAudit struct {
	Total           int              `json:"total"`
	Warnings        []Warning        `json:"warnings"`
	ByWeek          map[string][]DST `json:"by_week"`
	HasHighSeverity bool             `json:"has_high_severity"`
}

// DateSuggestion is one candidate reschedule date for a DST, ranked by the
// weekly load it would land in.
type DateSuggestion struct {
	Date         string     `json:"date"`
	WeekNumber   int        `json:"week_number"`
	ExistingLoad LoadStatus `json:"existing_load"`
	Score        int        `json:"score"`
	Recommended  bool       `json:"recommended"`
}

// SubjectStats aggregates load contribution per subject over a period.
type SubjectStats struct {
	Count       int `json:"count"`
	TotalWeight int `json:"total_weight"`
}

// WorkloadStats summarises a class workload over an arbitrary period.
type WorkloadStats struct {
	Start            string                  `json:"start"`
	End              string                  `json:"end"`
	Days             int                     `json:"days"`
	TotalAssignments int                     `json:"total_assignments"`
	TotalScore       int                     `json:"total_score"`
	AverageDailyLoad float64                 `json:"average_daily_load"`
	PeakDays         []DailySummary          `json:"peak_days"`
	StatusCounts     map[LoadStatus]int      `json:"status_counts"`
	BySubject        map[string]SubjectStats `json:"by_subject"`
	OverloadDays     int                     `json:"overload_days"`
}
