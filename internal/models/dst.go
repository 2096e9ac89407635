package models

import (
	"time"

	"github.com/lib/pq"
)

// DST is a supervised, fixed-duration exam sitting, expected on the
// canonical exam weekday and spanning one or more classes.
type DST struct {
	ID        string         `db:"id" json:"id"`
	Date      string         `db:"date" json:"date"`
	Subject   string         `db:"subject" json:"subject"`
	Classes   pq.StringArray `db:"classes" json:"classes"`
	StartTime string         `db:"start_time" json:"start_time,omitempty"`
	EndTime   string         `db:"end_time" json:"end_time,omitempty"`
	Room      string         `db:"room" json:"room,omitempty"`
	Source    string         `db:"source" json:"source,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// ResolveDate parses the exam date, reporting whether it is usable.
func (d DST) ResolveDate() (time.Time, bool) {
	return ResolveDate(d.Date)
}

// AsAssignment projects the exam into the workload model so the aggregator
// can score the week it lands in.
func (d DST) AsAssignment() Assignment {
	return Assignment{
		ID:      d.ID,
		Kind:    KindTest,
		SubKind: SubKindDST,
		DueDate: d.Date,
		Subject: d.Subject,
	}
}
