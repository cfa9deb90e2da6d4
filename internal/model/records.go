package model

import "time"

// Activity types reported for CPD entries.
const (
	ActivityParticipatory    = "participatory"
	ActivityNonParticipatory = "non-participatory"
)

// WorkHour is a clocked practice session from the `work_hours` table.
// An entry without an end time is still running (IsActive).
type WorkHour struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime"`
	DurationMinutes *int       `json:"durationMinutes"`
	IsActive        bool       `json:"isActive"`
	WorkType        *string    `json:"workType"`
	Description     *string    `json:"description"`
	DocumentIDs     []int64    `json:"documentIds"`
	CreatedAt       *time.Time `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt"`
}

// CPDHour is a continuing professional development entry from the
// `cpd_hours` table.  Topic comes from the legacy training_name column.
type CPDHour struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	Topic           string     `json:"topic"`
	ActivityType    string     `json:"activityType"`
	Hours           float64    `json:"hours"`
	DurationMinutes *int       `json:"durationMinutes"`
	ActivityDate    *time.Time `json:"activityDate"`
	StartTime       *time.Time `json:"startTime"`
	EndTime         *time.Time `json:"endTime"`
	Description     *string    `json:"description"`
	DocumentIDs     []int64    `json:"documentIds"`
	CreatedAt       *time.Time `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt"`
}

// Feedback received from a patient, colleague or manager.
type Feedback struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"userId"`
	FeedbackDate *time.Time `json:"feedbackDate"`
	FeedbackType *string    `json:"feedbackType"`
	From         *string    `json:"from"`
	Text         *string    `json:"text"`
	DocumentIDs  []int64    `json:"documentIds"`
	CreatedAt    *time.Time `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt"`
}

// Reflection is a written reflective account.
type Reflection struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"userId"`
	ReflectionDate *time.Time `json:"reflectionDate"`
	Title          string     `json:"title"`
	Category       *string    `json:"category"`
	Text           *string    `json:"text"`
	DocumentIDs    []int64    `json:"documentIds"`
	CreatedAt      *time.Time `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt"`
}

// Appraisal records an appraisal meeting.
type Appraisal struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"userId"`
	AppraisalDate *time.Time `json:"appraisalDate"`
	AppraiserName *string    `json:"appraiserName"`
	AppraisalType *string    `json:"appraisalType"`
	Notes         *string    `json:"notes"`
	DocumentIDs   []int64    `json:"documentIds"`
	CreatedAt     *time.Time `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt"`
}

// CalendarEvent is an entry in the user's revalidation calendar.
type CalendarEvent struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	EventType   *string    `json:"eventType"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Location    *string    `json:"location"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// Document is metadata for an uploaded evidence file.
type Document struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	Name      string     `json:"name"`
	FilePath  *string    `json:"filePath"`
	FileType  *string    `json:"fileType"`
	FileSize  *int64     `json:"fileSize"`
	Category  *string    `json:"category"`
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// ListFilter carries pagination and filters shared by every log table.
// From and To bound the table's date column (To is exclusive; handlers
// move a date-only To to the following midnight).  Type
// filters the table's type/category column when non-empty.
type ListFilter struct {
	Limit  int
	Offset int
	From   *time.Time
	To     *time.Time
	Type   string
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Normalized returns a copy with limit and offset clamped to sane values.
func (f ListFilter) Normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
