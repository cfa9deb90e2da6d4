package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
)

var appraisalsTable = table{name: "appraisals", dateColumn: codec.ColAppraisalDate, typeColumn: codec.ColAppraisalType}

// AppraisalRepo accesses the appraisals table.
type AppraisalRepo struct{ s logStore }

func NewAppraisalRepo(db *sql.DB) *AppraisalRepo {
	return &AppraisalRepo{s: logStore{db: db, t: appraisalsTable}}
}

func (r *AppraisalRepo) Create(ctx context.Context, ownerID int64, in model.AppraisalInput) (*model.Appraisal, error) {
	id, err := r.s.insert(ctx, ownerID, map[string]any{
		codec.ColAppraisalDate: dbTime(in.AppraisalDate),
		codec.ColAppraiserName: nullable(in.AppraiserName),
		codec.ColAppraisalType: nullable(in.AppraisalType),
		codec.ColNotes:         nullable(in.Notes),
		codec.ColDocumentIDs:   codec.EncodeDocumentIDs(in.DocumentIDs),
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *AppraisalRepo) GetByID(ctx context.Context, id, ownerID int64) (*model.Appraisal, error) {
	row, err := r.s.get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	a := codec.DecodeAppraisalRow(row)
	return &a, nil
}

func (r *AppraisalRepo) List(ctx context.Context, ownerID int64, f model.ListFilter) ([]model.Appraisal, int64, error) {
	rows, total, err := r.s.list(ctx, ownerID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.Appraisal, 0, len(rows))
	for _, row := range rows {
		out = append(out, codec.DecodeAppraisalRow(row))
	}
	return out, total, nil
}

func (r *AppraisalRepo) Update(ctx context.Context, id, ownerID int64, p model.AppraisalPatch) (*model.Appraisal, error) {
	patch := map[string]any{}
	setTimeIf(patch, codec.ColAppraisalDate, p.AppraisalDate)
	setIf(patch, codec.ColAppraiserName, p.AppraiserName)
	setIf(patch, codec.ColAppraisalType, p.AppraisalType)
	setIf(patch, codec.ColNotes, p.Notes)
	if p.DocumentIDs != nil {
		patch[codec.ColDocumentIDs] = codec.EncodeDocumentIDs(*p.DocumentIDs)
	}
	if err := r.s.update(ctx, id, ownerID, patch); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *AppraisalRepo) Delete(ctx context.Context, id, ownerID int64) error {
	return r.s.delete(ctx, id, ownerID)
}
