package models

import "time"

// AssignmentKind is the coarse two-tier classification of scholastic work.
type AssignmentKind string

const (
	KindHomework AssignmentKind = "homework"
	KindTest     AssignmentKind = "test"
)

// AssignmentSubKind refines the kind when the caller knows more. An empty
// sub-kind falls back to the two-tier weight.
type AssignmentSubKind string

const (
	SubKindLight   AssignmentSubKind = "light"
	SubKindMedium  AssignmentSubKind = "medium"
	SubKindHeavy   AssignmentSubKind = "heavy"
	SubKindQuiz    AssignmentSubKind = "quiz"
	SubKindControl AssignmentSubKind = "control"
	SubKindDST     AssignmentSubKind = "dst"
	SubKindExam    AssignmentSubKind = "exam"
)

// Assignment is one unit of scholastic work. DueDate is kept as the raw
// YYYY-MM-DD string supplied by the source; unresolvable values are excluded
// from aggregation rather than failing it.
type Assignment struct {
	ID        string            `db:"id" json:"id"`
	Kind      AssignmentKind    `db:"kind" json:"kind"`
	SubKind   AssignmentSubKind `db:"sub_kind" json:"sub_kind,omitempty"`
	DueDate   string            `db:"due_date" json:"due_date"`
	ClassID   string            `db:"class_id" json:"class_id"`
	Subject   string            `db:"subject" json:"subject"`
	Done      bool              `db:"done" json:"done"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

// ResolveDueDate parses the due date, reporting whether it is usable.
func (a Assignment) ResolveDueDate() (time.Time, bool) {
	return ResolveDate(a.DueDate)
}

// ResolveDate parses a calendar date in YYYY-MM-DD form, tolerating a full
// RFC 3339 timestamp from older sources. The time component is discarded.
func ResolveDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// AssignmentFilter narrows down assignment listings.
type AssignmentFilter struct {
	ClassID string
	Subject string
	From    *time.Time
	To      *time.Time
}
