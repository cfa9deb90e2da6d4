package codec

import (
	"math"
	"strconv"

	"github.com/iliyamo/revalidation-api/internal/model"
)

// Legacy cpd_hours columns that carry repurposed meaning.
const (
	ColTrainingName       = "training_name"
	ColNumberHours        = "number_hours"
	ColParticipatoryHours = "participatory_hours"
	ColDurationMinutes    = "duration_minutes"
)

// CPDHours returns the hours credited to a CPD entry.  number_hours is
// authoritative when it parses to a positive decimal; empty, '0' and NULL
// fall back to duration_minutes, and to zero when that is missing too.
func CPDHours(numberHours, durationMinutes any) float64 {
	if h, ok := asFloat(numberHours); ok && h > 0 {
		return h
	}
	if m, ok := asFloat(durationMinutes); ok && m > 0 {
		return m / 60
	}
	return 0
}

// IsParticipatory decodes participatory_hours, which holds an activity
// type flag rather than an hours value: any positive integer means the
// activity was participatory.
func IsParticipatory(v any) bool {
	n, ok := leadingInt(v)
	return ok && n > 0
}

// ActivityType maps participatory_hours to the reported activity type.
func ActivityType(v any) string {
	if IsParticipatory(v) {
		return model.ActivityParticipatory
	}
	return model.ActivityNonParticipatory
}

// EncodeParticipatory returns the participatory_hours value to store.
func EncodeParticipatory(participatory bool) string {
	if participatory {
		return "1"
	}
	return "0"
}

// FormatHours renders hours for the number_hours string column, rounded
// to two decimals with trailing zeros dropped.
func FormatHours(h float64) string {
	r := math.Round(h*100) / 100
	return strconv.FormatFloat(r, 'f', -1, 64)
}
