package repository

import "time"

// nullable returns the pointed-to value, or nil so the column is NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// dbTime normalises a timestamp before it is bound: UTC, whole seconds.
func dbTime(t time.Time) time.Time { return t.UTC().Truncate(time.Second) }

func dbTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dbTime(*t)
}

// setIf adds col to patch when the field was supplied.
func setIf[T any](patch map[string]any, col string, p *T) {
	if p != nil {
		patch[col] = *p
	}
}

func setTimeIf(patch map[string]any, col string, t *time.Time) {
	if t != nil {
		patch[col] = dbTime(*t)
	}
}
