package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// DefaultEventTime is used when an event is created without a time.
	DefaultEventTime = "00:00"
)

// CalendarEvent is a dated entry. Date is YYYY-MM-DD, Time is HH:MM;
// StartTime and EndTime are derived from them unless given explicitly.
type CalendarEvent struct {
	ID          uuid.UUID `json:"id"`
	UserID      UserID    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
}

type EventPatch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	StartTime   *time.Time
	EndTime     *time.Time
}

func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Time == nil &&
		p.StartTime == nil && p.EndTime == nil
}

// EventStart combines a date and an HH:MM time into a timestamp (UTC).
func EventStart(date, clock string) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, time.UTC)
}
