package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
)

var workHoursTable = table{name: "work_hours", dateColumn: codec.ColStartTime, typeColumn: codec.ColWorkType}

// WorkHourRepo accesses the work_hours table.
type WorkHourRepo struct{ s logStore }

func NewWorkHourRepo(db *sql.DB) *WorkHourRepo {
	return &WorkHourRepo{s: logStore{db: db, t: workHoursTable}}
}

// Create inserts a work session.  When no duration is given and the
// session has ended, the duration is computed from the two timestamps.
func (r *WorkHourRepo) Create(ctx context.Context, ownerID int64, in model.WorkHourInput) (*model.WorkHour, error) {
	start := dbTime(in.StartTime)
	duration := in.DurationMinutes
	if in.EndTime != nil {
		m, err := durationMinutes(start, dbTime(*in.EndTime))
		if err != nil {
			return nil, err
		}
		if duration == nil {
			duration = &m
		}
	}
	id, err := r.s.insert(ctx, ownerID, map[string]any{
		codec.ColStartTime:       start,
		codec.ColEndTime:         dbTimePtr(in.EndTime),
		codec.ColDurationMinutes: nullable(duration),
		codec.ColWorkType:        nullable(in.WorkType),
		codec.ColWorkDescription: nullable(in.Description),
		codec.ColDocumentIDs:     codec.EncodeDocumentIDs(in.DocumentIDs),
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *WorkHourRepo) GetByID(ctx context.Context, id, ownerID int64) (*model.WorkHour, error) {
	row, err := r.s.get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	w := codec.DecodeWorkHourRow(row)
	return &w, nil
}

func (r *WorkHourRepo) List(ctx context.Context, ownerID int64, f model.ListFilter) ([]model.WorkHour, int64, error) {
	rows, total, err := r.s.list(ctx, ownerID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.WorkHour, 0, len(rows))
	for _, row := range rows {
		out = append(out, codec.DecodeWorkHourRow(row))
	}
	return out, total, nil
}

// Update writes the supplied fields.  Changing either end of the session
// recomputes the duration unless the patch sets one explicitly.
func (r *WorkHourRepo) Update(ctx context.Context, id, ownerID int64, p model.WorkHourPatch) (*model.WorkHour, error) {
	patch := map[string]any{}
	setTimeIf(patch, codec.ColStartTime, p.StartTime)
	setTimeIf(patch, codec.ColEndTime, p.EndTime)
	setIf(patch, codec.ColDurationMinutes, p.DurationMinutes)
	setIf(patch, codec.ColWorkType, p.WorkType)
	setIf(patch, codec.ColWorkDescription, p.Description)
	if p.DocumentIDs != nil {
		patch[codec.ColDocumentIDs] = codec.EncodeDocumentIDs(*p.DocumentIDs)
	}
	if len(patch) == 0 {
		return nil, ErrEmptyPatch
	}

	current, err := r.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if p.StartTime != nil || p.EndTime != nil {
		start := current.StartTime
		if p.StartTime != nil {
			start = dbTime(*p.StartTime)
		}
		end := current.EndTime
		if p.EndTime != nil {
			t := dbTime(*p.EndTime)
			end = &t
		}
		if end != nil {
			m, err := durationMinutes(start, *end)
			if err != nil {
				return nil, err
			}
			if p.DurationMinutes == nil {
				patch[codec.ColDurationMinutes] = m
			}
		}
	}

	if err := r.s.write(ctx, id, ownerID, patch); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *WorkHourRepo) Delete(ctx context.Context, id, ownerID int64) error {
	return r.s.delete(ctx, id, ownerID)
}
