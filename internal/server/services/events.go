package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/donna/internal/common"
	"github.com/dmitrijs2005/donna/internal/server/models"
	"github.com/dmitrijs2005/donna/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const defaultEventTitle = "Event"

// EventInput carries client-supplied event fields; nil means not supplied.
// StartTime and EndTime are timestamps, with or without a zone.
type EventInput struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	StartTime   *string
	EndTime     *string
}

type EventService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewEventService(db *sql.DB, m repomanager.RepositoryManager) *EventService {
	return &EventService{db: db, repomanager: m, now: time.Now}
}

// List returns all of owner's events by date.
func (s *EventService) List(ctx context.Context, owner models.UserID) ([]*models.CalendarEvent, error) {
	events, err := s.repomanager.Events(s.db).ListByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return events, nil
}

func (s *EventService) Create(ctx context.Context, owner models.UserID, in EventInput) (*models.CalendarEvent, error) {
	e := &models.CalendarEvent{
		Title: defaultEventTitle,
		Date:  s.now().Format(models.DateLayout),
		Time:  models.DefaultEventTime,
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		e.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.Date != nil && *in.Date != "" {
		if err := validateDate("date", *in.Date); err != nil {
			return nil, err
		}
		e.Date = *in.Date
	}
	if in.Time != nil && *in.Time != "" {
		if err := validateClock("time", *in.Time); err != nil {
			return nil, err
		}
		e.Time = *in.Time
	}

	start, err := models.EventStart(e.Date, e.Time)
	if err != nil {
		return nil, common.Detail(common.ErrorValidation, "invalid date or time")
	}
	e.StartTime, e.EndTime = start, start

	if in.StartTime != nil {
		if e.StartTime, err = parseTimestamp("start_time", *in.StartTime); err != nil {
			return nil, err
		}
	}
	if in.EndTime != nil {
		if e.EndTime, err = parseTimestamp("end_time", *in.EndTime); err != nil {
			return nil, err
		}
	}

	created, err := s.repomanager.Events(s.db).Create(ctx, owner, e)
	if err != nil {
		return nil, fmt.Errorf("error creating event: %w", err)
	}
	return created, nil
}

// Update applies only the supplied fields; an empty input changes nothing.
func (s *EventService) Update(ctx context.Context, owner models.UserID, id uuid.UUID, in EventInput) error {
	patch := models.EventPatch{
		Title:       in.Title,
		Description: in.Description,
	}

	if in.Date != nil {
		if err := validateDate("date", *in.Date); err != nil {
			return err
		}
		patch.Date = in.Date
	}
	if in.Time != nil {
		if err := validateClock("time", *in.Time); err != nil {
			return err
		}
		patch.Time = in.Time
	}
	if in.StartTime != nil {
		ts, err := parseTimestamp("start_time", *in.StartTime)
		if err != nil {
			return err
		}
		patch.StartTime = &ts
	}
	if in.EndTime != nil {
		ts, err := parseTimestamp("end_time", *in.EndTime)
		if err != nil {
			return err
		}
		patch.EndTime = &ts
	}

	if _, err := s.repomanager.Events(s.db).Update(ctx, owner, id, patch); err != nil {
		return fmt.Errorf("error updating event: %w", err)
	}
	return nil
}

func (s *EventService) Delete(ctx context.Context, owner models.UserID, id uuid.UUID) error {
	if _, err := s.repomanager.Events(s.db).Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

func parseTimestamp(field, s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, common.Detailf(common.ErrorValidation, "%s must be an ISO 8601 timestamp; got %q", field, s)
}
