package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
)

var reflectionsTable = table{name: "reflections", dateColumn: codec.ColReflectionDate, typeColumn: codec.ColCategory}

// ReflectionRepo accesses the reflections table.
type ReflectionRepo struct{ s logStore }

func NewReflectionRepo(db *sql.DB) *ReflectionRepo {
	return &ReflectionRepo{s: logStore{db: db, t: reflectionsTable}}
}

func (r *ReflectionRepo) Create(ctx context.Context, ownerID int64, in model.ReflectionInput) (*model.Reflection, error) {
	id, err := r.s.insert(ctx, ownerID, map[string]any{
		codec.ColTitle:          strings.TrimSpace(in.Title),
		codec.ColReflectionDate: dbTimePtr(in.ReflectionDate),
		codec.ColCategory:       nullable(in.Category),
		codec.ColReflectionText: nullable(in.Text),
		codec.ColDocumentIDs:    codec.EncodeDocumentIDs(in.DocumentIDs),
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *ReflectionRepo) GetByID(ctx context.Context, id, ownerID int64) (*model.Reflection, error) {
	row, err := r.s.get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	ref := codec.DecodeReflectionRow(row)
	return &ref, nil
}

func (r *ReflectionRepo) List(ctx context.Context, ownerID int64, f model.ListFilter) ([]model.Reflection, int64, error) {
	rows, total, err := r.s.list(ctx, ownerID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.Reflection, 0, len(rows))
	for _, row := range rows {
		out = append(out, codec.DecodeReflectionRow(row))
	}
	return out, total, nil
}

func (r *ReflectionRepo) Update(ctx context.Context, id, ownerID int64, p model.ReflectionPatch) (*model.Reflection, error) {
	patch := map[string]any{}
	if p.Title != nil {
		patch[codec.ColTitle] = strings.TrimSpace(*p.Title)
	}
	setTimeIf(patch, codec.ColReflectionDate, p.ReflectionDate)
	setIf(patch, codec.ColCategory, p.Category)
	setIf(patch, codec.ColReflectionText, p.Text)
	if p.DocumentIDs != nil {
		patch[codec.ColDocumentIDs] = codec.EncodeDocumentIDs(*p.DocumentIDs)
	}
	if err := r.s.update(ctx, id, ownerID, patch); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *ReflectionRepo) Delete(ctx context.Context, id, ownerID int64) error {
	return r.s.delete(ctx, id, ownerID)
}
