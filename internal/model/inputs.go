package model

import "time"

// Request shapes for the log tables.  Create inputs carry the required
// fields by value; patches use pointers so that a nil field means "not
// supplied" and is left out of the UPDATE.  Timestamps are RFC 3339.

type WorkHourInput struct {
	StartTime       time.Time  `json:"start_time" validate:"required"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,min=0"`
	WorkType        *string    `json:"work_type" validate:"omitempty,max=100"`
	Description     *string    `json:"description"`
	DocumentIDs     []int64    `json:"document_ids" validate:"omitempty,dive,gt=0"`
}

type WorkHourPatch struct {
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,min=0"`
	WorkType        *string    `json:"work_type" validate:"omitempty,max=100"`
	Description     *string    `json:"description"`
	DocumentIDs     *[]int64   `json:"document_ids" validate:"omitempty,dive,gt=0"`
}

type CPDInput struct {
	Topic           string     `json:"topic" validate:"required,max=255"`
	ActivityType    string     `json:"activity_type" validate:"omitempty,oneof=participatory non-participatory"`
	Hours           *float64   `json:"hours" validate:"omitempty,gte=0"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,min=0"`
	ActivityDate    *time.Time `json:"activity_date"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Description     *string    `json:"description"`
	DocumentIDs     []int64    `json:"document_ids" validate:"omitempty,dive,gt=0"`
}

type CPDPatch struct {
	Topic           *string    `json:"topic" validate:"omitempty,min=1,max=255"`
	ActivityType    *string    `json:"activity_type" validate:"omitempty,oneof=participatory non-participatory"`
	Hours           *float64   `json:"hours" validate:"omitempty,gte=0"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,min=0"`
	ActivityDate    *time.Time `json:"activity_date"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Description     *string    `json:"description"`
	DocumentIDs     *[]int64   `json:"document_ids" validate:"omitempty,dive,gt=0"`
}

type FeedbackInput struct {
	FeedbackDate time.Time `json:"feedback_date" validate:"required"`
	FeedbackType *string   `json:"feedback_type" validate:"omitempty,max=100"`
	From         *string   `json:"from" validate:"omitempty,max=255"`
	Text         *string   `json:"text"`
	DocumentIDs  []int64   `json:"document_ids" validate:"omitempty,dive,gt=0"`
}

type FeedbackPatch struct {
	FeedbackDate *time.Time `json:"feedback_date"`
	FeedbackType *string    `json:"feedback_type" validate:"omitempty,max=100"`
	From         *string    `json:"from" validate:"omitempty,max=255"`
	Text         *string    `json:"text"`
	DocumentIDs  *[]int64   `json:"document_ids" validate:"omitempty,dive,gt=0"`
}

type ReflectionInput struct {
	Title          string     `json:"title" validate:"required,max=255"`
	ReflectionDate *time.Time `json:"reflection_date"`
	Category       *string    `json:"category" validate:"omitempty,max=100"`
	Text           *string    `json:"text"`
	DocumentIDs    []int64    `json:"document_ids" validate:"omitempty,dive,gt=0"`
}

type ReflectionPatch struct {
	Title          *string    `json:"title" validate:"omitempty,min=1,max=255"`
	ReflectionDate *time.Time `json:"reflection_date"`
	Category       *string    `json:"category" validate:"omitempty,max=100"`
	Text           *string    `json:"text"`
	DocumentIDs    *[]int64   `json:"document_ids" validate:"omitempty,dive,gt=0"`
}

type AppraisalInput struct {
	AppraisalDate time.Time `json:"appraisal_date" validate:"required"`
	AppraiserName *string   `json:"appraiser_name" validate:"omitempty,max=255"`
	AppraisalType *string   `json:"appraisal_type" validate:"omitempty,max=100"`
	Notes         *string   `json:"notes"`
	DocumentIDs   []int64   `json:"document_ids" validate:"omitempty,dive,gt=0"`
}

type AppraisalPatch struct {
	AppraisalDate *time.Time `json:"appraisal_date"`
	AppraiserName *string    `json:"appraiser_name" validate:"omitempty,max=255"`
	AppraisalType *string    `json:"appraisal_type" validate:"omitempty,max=100"`
	Notes         *string    `json:"notes"`
	DocumentIDs   *[]int64   `json:"document_ids" validate:"omitempty,dive,gt=0"`
}

type CalendarEventInput struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description *string    `json:"description"`
	EventType   *string    `json:"event_type" validate:"omitempty,max=100"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	Location    *string    `json:"location" validate:"omitempty,max=255"`
}

type CalendarEventPatch struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description"`
	EventType   *string    `json:"event_type" validate:"omitempty,max=100"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Location    *string    `json:"location" validate:"omitempty,max=255"`
}

type DocumentInput struct {
	Name     string  `json:"name" validate:"required,max=255"`
	FilePath *string `json:"file_path" validate:"omitempty,max=1024"`
	FileType *string `json:"file_type" validate:"omitempty,max=100"`
	FileSize *int64  `json:"file_size" validate:"omitempty,min=0"`
	Category *string `json:"category" validate:"omitempty,max=100"`
}

type DocumentPatch struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	FilePath *string `json:"file_path" validate:"omitempty,max=1024"`
	FileType *string `json:"file_type" validate:"omitempty,max=100"`
	FileSize *int64  `json:"file_size" validate:"omitempty,min=0"`
	Category *string `json:"category" validate:"omitempty,max=100"`
}
