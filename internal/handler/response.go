package handler // handler defines http handlers

import (
	"errors"   // errors.Is/As map repository sentinels to status codes
	"net/http" // net/http provides status codes

	"github.com/go-playground/validator/v10" // validation errors carry per-field details
	"github.com/labstack/echo/v4"            // echo defines request context types
	"github.com/rs/zerolog"                  // request-scoped logger for 5xx errors

	"github.com/iliyamo/revalidation-api/internal/model"      // list defaults echoed in pagination
	"github.com/iliyamo/revalidation-api/internal/repository" // sentinel errors
)

// Pagination is attached to list responses.
type Pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type successBody struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type errorBody struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// respond writes the success envelope.
func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, successBody{Success: true, Data: data})
}

// respondList writes the success envelope with pagination for f.
func respondList(c echo.Context, data any, total int64, f model.ListFilter) error {
	f = f.Normalized()
	return c.JSON(http.StatusOK, successBody{
		Success:    true,
		Data:       data,
		Pagination: &Pagination{Total: total, Limit: f.Limit, Offset: f.Offset},
	})
}

// badRequest builds the error returned for malformed input.
func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// ErrorHandler renders every error returned by a handler or middleware in
// the failure envelope.  Unexpected errors become 500; in production the
// message is replaced with a generic one.
func ErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := mapError(err, production)
		if status >= http.StatusInternalServerError {
			zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("request failed")
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("write error response")
		}
	}
}

func mapError(err error, production bool) (int, errorBody) {
	body := errorBody{Success: false}

	var verrs validator.ValidationErrors
	var he *echo.HTTPError
	switch {
	case errors.As(err, &verrs):
		body.Error = "validation failed"
		body.Details = validationDetails(verrs)
		return http.StatusBadRequest, body
	case errors.As(err, &he):
		body.Error = http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok && msg != "" {
			body.Error = msg
		}
		if he.Code >= http.StatusInternalServerError && production {
			body.Error = "internal server error"
		}
		return he.Code, body
	case errors.Is(err, repository.ErrNotFound):
		body.Error = "not found"
		return http.StatusNotFound, body
	case errors.Is(err, repository.ErrEmptyPatch), errors.Is(err, repository.ErrBadRequest):
		body.Error = err.Error()
		return http.StatusBadRequest, body
	case errors.Is(err, repository.ErrConflict):
		body.Error = err.Error()
		return http.StatusConflict, body
	case errors.Is(err, repository.ErrForbidden):
		body.Error = err.Error()
		return http.StatusForbidden, body
	}

	body.Error = "internal server error"
	if !production {
		body.Error = err.Error()
	}
	return http.StatusInternalServerError, body
}
