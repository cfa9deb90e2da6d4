package codec

import (
	"time"

	"github.com/iliyamo/revalidation-api/internal/model"
)

// Columns shared by every log table.
const (
	ColID        = "id"
	ColOwnerID   = "user_id"
	ColStartTime = "start_time"
	ColEndTime   = "end_time"
)

// work_hours
const (
	ColWorkType        = "work_type"
	ColWorkDescription = "work_description"
)

// cpd_hours
const (
	ColActivityDate   = "activity_date"
	ColCPDDescription = "description"
)

// feedback
const (
	ColFeedbackDate = "feedback_date"
	ColFeedbackType = "feedback_type"
	ColFeedbackFrom = "feedback_from"
	ColFeedbackText = "feedback_text"
)

// reflections
const (
	ColReflectionDate = "reflection_date"
	ColTitle          = "title"
	ColCategory       = "category"
	ColReflectionText = "reflection_text"
)

// appraisals
const (
	ColAppraisalDate = "appraisal_date"
	ColAppraiserName = "appraiser_name"
	ColAppraisalType = "appraisal_type"
	ColNotes         = "notes"
)

// calendar_events
const (
	ColEventDescription = "description"
	ColEventType        = "event_type"
	ColStartDate        = "start_date"
	ColEndDate          = "end_date"
	ColLocation         = "location"
)

// documents
const (
	ColDocumentName = "document_name"
	ColFilePath     = "file_path"
	ColFileType     = "file_type"
	ColFileSize     = "file_size"
)

func rowID(row map[string]any, col string) int64 {
	n, _ := asInt64(row[col])
	return n
}

func timeOrZero(v any) time.Time {
	if t := asTime(v); t != nil {
		return *t
	}
	return time.Time{}
}

func stringOrEmpty(v any) string {
	s, _ := asString(v)
	return s
}

// DecodeWorkHourRow maps a work_hours row.
func DecodeWorkHourRow(row map[string]any) model.WorkHour {
	w := model.WorkHour{
		ID:              rowID(row, ColID),
		UserID:          rowID(row, ColOwnerID),
		StartTime:       timeOrZero(row[ColStartTime]),
		EndTime:         asTime(row[ColEndTime]),
		DurationMinutes: asIntPtr(row[ColDurationMinutes]),
		WorkType:        asStringPtr(row[ColWorkType]),
		Description:     asStringPtr(row[ColWorkDescription]),
		DocumentIDs:     DecodeDocumentIDs(row[ColDocumentIDs]),
		CreatedAt:       asTime(row[ColCreatedAt]),
		UpdatedAt:       asTime(row[ColUpdatedAt]),
	}
	w.IsActive = w.EndTime == nil
	return w
}

// DecodeCPDRow maps a cpd_hours row.  number_hours and participatory_hours
// are decoded through CPDHours and ActivityType.
func DecodeCPDRow(row map[string]any) model.CPDHour {
	return model.CPDHour{
		ID:              rowID(row, ColID),
		UserID:          rowID(row, ColOwnerID),
		Topic:           stringOrEmpty(row[ColTrainingName]),
		ActivityType:    ActivityType(row[ColParticipatoryHours]),
		Hours:           CPDHours(row[ColNumberHours], row[ColDurationMinutes]),
		DurationMinutes: asIntPtr(row[ColDurationMinutes]),
		ActivityDate:    asTime(row[ColActivityDate]),
		StartTime:       asTime(row[ColStartTime]),
		EndTime:         asTime(row[ColEndTime]),
		Description:     asStringPtr(row[ColCPDDescription]),
		DocumentIDs:     DecodeDocumentIDs(row[ColDocumentIDs]),
		CreatedAt:       asTime(row[ColCreatedAt]),
		UpdatedAt:       asTime(row[ColUpdatedAt]),
	}
}

// DecodeFeedbackRow maps a feedback row.
func DecodeFeedbackRow(row map[string]any) model.Feedback {
	return model.Feedback{
		ID:           rowID(row, ColID),
		UserID:       rowID(row, ColOwnerID),
		FeedbackDate: asTime(row[ColFeedbackDate]),
		FeedbackType: asStringPtr(row[ColFeedbackType]),
		From:         asStringPtr(row[ColFeedbackFrom]),
		Text:         asStringPtr(row[ColFeedbackText]),
		DocumentIDs:  DecodeDocumentIDs(row[ColDocumentIDs]),
		CreatedAt:    asTime(row[ColCreatedAt]),
		UpdatedAt:    asTime(row[ColUpdatedAt]),
	}
}

// DecodeReflectionRow maps a reflections row.
func DecodeReflectionRow(row map[string]any) model.Reflection {
	return model.Reflection{
		ID:             rowID(row, ColID),
		UserID:         rowID(row, ColOwnerID),
		ReflectionDate: asTime(row[ColReflectionDate]),
		Title:          stringOrEmpty(row[ColTitle]),
		Category:       asStringPtr(row[ColCategory]),
		Text:           asStringPtr(row[ColReflectionText]),
		DocumentIDs:    DecodeDocumentIDs(row[ColDocumentIDs]),
		CreatedAt:      asTime(row[ColCreatedAt]),
		UpdatedAt:      asTime(row[ColUpdatedAt]),
	}
}

// DecodeAppraisalRow maps an appraisals row.
func DecodeAppraisalRow(row map[string]any) model.Appraisal {
	return model.Appraisal{
		ID:            rowID(row, ColID),
		UserID:        rowID(row, ColOwnerID),
		AppraisalDate: asTime(row[ColAppraisalDate]),
		AppraiserName: asStringPtr(row[ColAppraiserName]),
		AppraisalType: asStringPtr(row[ColAppraisalType]),
		Notes:         asStringPtr(row[ColNotes]),
		DocumentIDs:   DecodeDocumentIDs(row[ColDocumentIDs]),
		CreatedAt:     asTime(row[ColCreatedAt]),
		UpdatedAt:     asTime(row[ColUpdatedAt]),
	}
}

// DecodeCalendarEventRow maps a calendar_events row.
func DecodeCalendarEventRow(row map[string]any) model.CalendarEvent {
	return model.CalendarEvent{
		ID:          rowID(row, ColID),
		UserID:      rowID(row, ColOwnerID),
		Title:       stringOrEmpty(row[ColTitle]),
		Description: asStringPtr(row[ColEventDescription]),
		EventType:   asStringPtr(row[ColEventType]),
		StartDate:   timeOrZero(row[ColStartDate]),
		EndDate:     asTime(row[ColEndDate]),
		Location:    asStringPtr(row[ColLocation]),
		CreatedAt:   asTime(row[ColCreatedAt]),
		UpdatedAt:   asTime(row[ColUpdatedAt]),
	}
}

// DecodeDocumentRow maps a documents row.
func DecodeDocumentRow(row map[string]any) model.Document {
	return model.Document{
		ID:        rowID(row, ColID),
		UserID:    rowID(row, ColOwnerID),
		Name:      stringOrEmpty(row[ColDocumentName]),
		FilePath:  asStringPtr(row[ColFilePath]),
		FileType:  asStringPtr(row[ColFileType]),
		FileSize:  asInt64Ptr(row[ColFileSize]),
		Category:  asStringPtr(row[ColCategory]),
		CreatedAt: asTime(row[ColCreatedAt]),
		UpdatedAt: asTime(row[ColUpdatedAt]),
	}
}
