package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
)

var cpdTable = table{
	name:          "cpd_hours",
	dateColumn:    codec.ColActivityDate,
	typeCondition: cpdActivityCondition,
}

// participatoryExpr reads participatory_hours the way codec.IsParticipatory
// does: the leading integer of the text, 0 when there is none.  The cast
// target "SIGNED INTEGER" is valid MySQL and has integer affinity in sqlite.
const participatoryExpr = "COALESCE(CAST(" + codec.ColParticipatoryHours + " AS SIGNED INTEGER), 0)"

// cpdActivityCondition filters on the decoded activity type rather than the
// stored discriminator, so legacy values such as '2' or NULL are matched.
// Unknown types match nothing.
func cpdActivityCondition(value string) (string, []any) {
	switch value {
	case model.ActivityParticipatory:
		return participatoryExpr + " > 0", nil
	case model.ActivityNonParticipatory:
		return participatoryExpr + " <= 0", nil
	}
	return "1 = 0", nil
}

// CPDRepo accesses the cpd_hours table.  The legacy columns are renamed on
// the way through: topic is training_name, the activity type lives in
// participatory_hours and hours are kept as text in number_hours.
type CPDRepo struct{ s logStore }

func NewCPDRepo(db *sql.DB) *CPDRepo {
	return &CPDRepo{s: logStore{db: db, t: cpdTable}}
}

func (r *CPDRepo) Create(ctx context.Context, ownerID int64, in model.CPDInput) (*model.CPDHour, error) {
	duration := in.DurationMinutes
	if in.StartTime != nil && in.EndTime != nil {
		m, err := durationMinutes(dbTime(*in.StartTime), dbTime(*in.EndTime))
		if err != nil {
			return nil, err
		}
		if duration == nil {
			duration = &m
		}
	}
	var hours any
	switch {
	case in.Hours != nil:
		hours = codec.FormatHours(*in.Hours)
	case duration != nil:
		hours = codec.FormatHours(float64(*duration) / 60)
	}
	id, err := r.s.insert(ctx, ownerID, map[string]any{
		codec.ColTrainingName:       strings.TrimSpace(in.Topic),
		codec.ColParticipatoryHours: codec.EncodeParticipatory(in.ActivityType == model.ActivityParticipatory),
		codec.ColNumberHours:        hours,
		codec.ColDurationMinutes:    nullable(duration),
		codec.ColActivityDate:       dbTimePtr(in.ActivityDate),
		codec.ColStartTime:          dbTimePtr(in.StartTime),
		codec.ColEndTime:            dbTimePtr(in.EndTime),
		codec.ColCPDDescription:     nullable(in.Description),
		codec.ColDocumentIDs:        codec.EncodeDocumentIDs(in.DocumentIDs),
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *CPDRepo) GetByID(ctx context.Context, id, ownerID int64) (*model.CPDHour, error) {
	row, err := r.s.get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	c := codec.DecodeCPDRow(row)
	return &c, nil
}

// List filters by activity type when f.Type names one.
func (r *CPDRepo) List(ctx context.Context, ownerID int64, f model.ListFilter) ([]model.CPDHour, int64, error) {
	rows, total, err := r.s.list(ctx, ownerID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.CPDHour, 0, len(rows))
	for _, row := range rows {
		out = append(out, codec.DecodeCPDRow(row))
	}
	return out, total, nil
}

func (r *CPDRepo) Update(ctx context.Context, id, ownerID int64, p model.CPDPatch) (*model.CPDHour, error) {
	patch := map[string]any{}
	if p.Topic != nil {
		patch[codec.ColTrainingName] = strings.TrimSpace(*p.Topic)
	}
	if p.ActivityType != nil {
		patch[codec.ColParticipatoryHours] = codec.EncodeParticipatory(*p.ActivityType == model.ActivityParticipatory)
	}
	if p.Hours != nil {
		patch[codec.ColNumberHours] = codec.FormatHours(*p.Hours)
	}
	setIf(patch, codec.ColDurationMinutes, p.DurationMinutes)
	setTimeIf(patch, codec.ColActivityDate, p.ActivityDate)
	setTimeIf(patch, codec.ColStartTime, p.StartTime)
	setTimeIf(patch, codec.ColEndTime, p.EndTime)
	setIf(patch, codec.ColCPDDescription, p.Description)
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
	duration := p.DurationMinutes
	if p.StartTime != nil || p.EndTime != nil {
		start, end := current.StartTime, current.EndTime
		if p.StartTime != nil {
			start = p.StartTime
		}
		if p.EndTime != nil {
			end = p.EndTime
		}
		if start != nil && end != nil {
			m, err := durationMinutes(dbTime(*start), dbTime(*end))
			if err != nil {
				return nil, err
			}
			if p.DurationMinutes == nil {
				patch[codec.ColDurationMinutes] = m
				duration = &m
			}
		}
	}
	// number_hours wins over duration_minutes on read, so a derived value
	// must follow the new duration
	if duration != nil && p.Hours == nil {
		patch[codec.ColNumberHours] = codec.FormatHours(float64(*duration) / 60)
	}

	if err := r.s.write(ctx, id, ownerID, patch); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *CPDRepo) Delete(ctx context.Context, id, ownerID int64) error {
	return r.s.delete(ctx, id, ownerID)
}
