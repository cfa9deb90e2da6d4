package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/model"
)

var feedbackTable = table{name: "feedback", dateColumn: codec.ColFeedbackDate, typeColumn: codec.ColFeedbackType}

// FeedbackRepo accesses the feedback table.
type FeedbackRepo struct{ s logStore }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{s: logStore{db: db, t: feedbackTable}}
}

func (r *FeedbackRepo) Create(ctx context.Context, ownerID int64, in model.FeedbackInput) (*model.Feedback, error) {
	id, err := r.s.insert(ctx, ownerID, map[string]any{
		codec.ColFeedbackDate: dbTime(in.FeedbackDate),
		codec.ColFeedbackType: nullable(in.FeedbackType),
		codec.ColFeedbackFrom: nullable(in.From),
		codec.ColFeedbackText: nullable(in.Text),
		codec.ColDocumentIDs:  codec.EncodeDocumentIDs(in.DocumentIDs),
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *FeedbackRepo) GetByID(ctx context.Context, id, ownerID int64) (*model.Feedback, error) {
	row, err := r.s.get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	f := codec.DecodeFeedbackRow(row)
	return &f, nil
}

func (r *FeedbackRepo) List(ctx context.Context, ownerID int64, f model.ListFilter) ([]model.Feedback, int64, error) {
	rows, total, err := r.s.list(ctx, ownerID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.Feedback, 0, len(rows))
	for _, row := range rows {
		out = append(out, codec.DecodeFeedbackRow(row))
	}
	return out, total, nil
}

func (r *FeedbackRepo) Update(ctx context.Context, id, ownerID int64, p model.FeedbackPatch) (*model.Feedback, error) {
	patch := map[string]any{}
	setTimeIf(patch, codec.ColFeedbackDate, p.FeedbackDate)
	setIf(patch, codec.ColFeedbackType, p.FeedbackType)
	setIf(patch, codec.ColFeedbackFrom, p.From)
	setIf(patch, codec.ColFeedbackText, p.Text)
	if p.DocumentIDs != nil {
		patch[codec.ColDocumentIDs] = codec.EncodeDocumentIDs(*p.DocumentIDs)
	}
	if err := r.s.update(ctx, id, ownerID, patch); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *FeedbackRepo) Delete(ctx context.Context, id, ownerID int64) error {
	return r.s.delete(ctx, id, ownerID)
}
