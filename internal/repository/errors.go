// Package repository holds the data access layer over the legacy MySQL
// schema.  The sentinel errors below are shared by every repository so
// handlers can map failures to HTTP statuses without knowing which table
// was involved.  Repositories wrap them with fmt.Errorf("%w: ...") when
// they have extra context; callers test with errors.Is.
package repository

import "errors"

// ErrNotFound is returned when no row matches.  Rows owned by another
// user are reported the same way as rows that do not exist.
var ErrNotFound = errors.New("not found")

// ErrEmptyPatch is returned by Update methods when the patch names no
// fields.  Handlers translate it into an HTTP 400 response.
var ErrEmptyPatch = errors.New("no fields to update")

// ErrBadRequest marks input that is well formed but inconsistent, such as
// an end time before the start time.
var ErrBadRequest = errors.New("bad request")

// ErrForbidden is returned when the caller may not act on the account,
// for example a blocked user attempting to log in.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with existing state: a
// duplicate email or a registration number already held by a verified
// user.  Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
