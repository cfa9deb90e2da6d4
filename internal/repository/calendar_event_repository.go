package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
)

var calendarEventsTable = table{name: "calendar_events", dateColumn: codec.ColStartDate, typeColumn: codec.ColEventType}

// CalendarEventRepo accesses the calendar_events table.
type CalendarEventRepo struct{ s logStore }

func NewCalendarEventRepo(db *sql.DB) *CalendarEventRepo {
	return &CalendarEventRepo{s: logStore{db: db, t: calendarEventsTable}}
}

func (r *CalendarEventRepo) Create(ctx context.Context, ownerID int64, in model.CalendarEventInput) (*model.CalendarEvent, error) {
	start := dbTime(in.StartDate)
	if in.EndDate != nil {
		if _, err := durationMinutes(start, dbTime(*in.EndDate)); err != nil {
			return nil, err
		}
	}
	id, err := r.s.insert(ctx, ownerID, map[string]any{
		codec.ColTitle:            strings.TrimSpace(in.Title),
		codec.ColEventDescription: nullable(in.Description),
		codec.ColEventType:        nullable(in.EventType),
		codec.ColStartDate:        start,
		codec.ColEndDate:          dbTimePtr(in.EndDate),
		codec.ColLocation:         nullable(in.Location),
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *CalendarEventRepo) GetByID(ctx context.Context, id, ownerID int64) (*model.CalendarEvent, error) {
	row, err := r.s.get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	e := codec.DecodeCalendarEventRow(row)
	return &e, nil
}

func (r *CalendarEventRepo) List(ctx context.Context, ownerID int64, f model.ListFilter) ([]model.CalendarEvent, int64, error) {
	rows, total, err := r.s.list(ctx, ownerID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.CalendarEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, codec.DecodeCalendarEventRow(row))
	}
	return out, total, nil
}

func (r *CalendarEventRepo) Update(ctx context.Context, id, ownerID int64, p model.CalendarEventPatch) (*model.CalendarEvent, error) {
	patch := map[string]any{}
	if p.Title != nil {
		patch[codec.ColTitle] = strings.TrimSpace(*p.Title)
	}
	setIf(patch, codec.ColEventDescription, p.Description)
	setIf(patch, codec.ColEventType, p.EventType)
	setTimeIf(patch, codec.ColStartDate, p.StartDate)
	setTimeIf(patch, codec.ColEndDate, p.EndDate)
	setIf(patch, codec.ColLocation, p.Location)
	if len(patch) == 0 {
		return nil, ErrEmptyPatch
	}

	current, err := r.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	start, end := current.StartDate, current.EndDate
	if p.StartDate != nil {
		start = dbTime(*p.StartDate)
	}
	if p.EndDate != nil {
		end = p.EndDate
	}
	if end != nil {
		if _, err := durationMinutes(start, dbTime(*end)); err != nil {
			return nil, err
		}
	}

	if err := r.s.write(ctx, id, ownerID, patch); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *CalendarEventRepo) Delete(ctx context.Context, id, ownerID int64) error {
	return r.s.delete(ctx, id, ownerID)
}
