package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
)

var documentsTable = table{name: "documents", dateColumn: codec.ColCreatedAt, typeColumn: codec.ColCategory}

// DocumentRepo accesses document metadata in the documents table.
type DocumentRepo struct{ s logStore }

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{s: logStore{db: db, t: documentsTable}}
}

func (r *DocumentRepo) Create(ctx context.Context, ownerID int64, in model.DocumentInput) (*model.Document, error) {
	id, err := r.s.insert(ctx, ownerID, map[string]any{
		codec.ColDocumentName: strings.TrimSpace(in.Name),
		codec.ColFilePath:     nullable(in.FilePath),
		codec.ColFileType:     nullable(in.FileType),
		codec.ColFileSize:     nullable(in.FileSize),
		codec.ColCategory:     nullable(in.Category),
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *DocumentRepo) GetByID(ctx context.Context, id, ownerID int64) (*model.Document, error) {
	row, err := r.s.get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	d := codec.DecodeDocumentRow(row)
	return &d, nil
}

func (r *DocumentRepo) List(ctx context.Context, ownerID int64, f model.ListFilter) ([]model.Document, int64, error) {
	rows, total, err := r.s.list(ctx, ownerID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.Document, 0, len(rows))
	for _, row := range rows {
		out = append(out, codec.DecodeDocumentRow(row))
	}
	return out, total, nil
}

func (r *DocumentRepo) Update(ctx context.Context, id, ownerID int64, p model.DocumentPatch) (*model.Document, error) {
	patch := map[string]any{}
	if p.Name != nil {
		patch[codec.ColDocumentName] = strings.TrimSpace(*p.Name)
	}
	setIf(patch, codec.ColFilePath, p.FilePath)
	setIf(patch, codec.ColFileType, p.FileType)
	setIf(patch, codec.ColFileSize, p.FileSize)
	setIf(patch, codec.ColCategory, p.Category)
	if err := r.s.update(ctx, id, ownerID, patch); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *DocumentRepo) Delete(ctx context.Context, id, ownerID int64) error {
	return r.s.delete(ctx, id, ownerID)
}
