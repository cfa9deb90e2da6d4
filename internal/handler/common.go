package handler // handler defines http handlers

import (
	"context"  // request-scoped deadlines for DB calls
	"net/http" // net/http provides status codes
	"strconv"  // strconv converts strings to numeric types
	"strings"  // strings trims query values
	"time"     // time parses date filters

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/revalidation-api/internal/middleware" // authenticated user id lookup
	"github.com/iliyamo/revalidation-api/internal/model"      // list filter
)

// dbTimeout bounds every repository call made on behalf of a request.
const dbTimeout = 5 * time.Second

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// getUserID extracts the authenticated user id set by JWTAuth.
func getUserID(c echo.Context) (int64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id")
	}
	return id, nil
}

// bindAndValidate decodes the JSON body into dst and runs the validator.
func bindAndValidate(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return badRequest("invalid body")
	}
	return c.Validate(dst)
}

// listFilter reads limit, offset, from, to and type from the query string.
// Dates are RFC 3339 timestamps or plain YYYY-MM-DD days.
func listFilter(c echo.Context) (model.ListFilter, error) {
	var f model.ListFilter
	var err error
	if s := c.QueryParam("limit"); s != "" {
		if f.Limit, err = strconv.Atoi(s); err != nil || f.Limit < 0 {
			return f, badRequest("invalid limit")
		}
	}
	if s := c.QueryParam("offset"); s != "" {
		if f.Offset, err = strconv.Atoi(s); err != nil || f.Offset < 0 {
			return f, badRequest("invalid offset")
		}
	}
	if f.From, _, err = queryTime(c, "from"); err != nil {
		return f, err
	}
	var dayOnly bool
	if f.To, dayOnly, err = queryTime(c, "to"); err != nil {
		return f, err
	}
	// the bound is exclusive, so a bare date includes that whole day
	if dayOnly {
		next := f.To.AddDate(0, 0, 1)
		f.To = &next
	}
	f.Type = strings.TrimSpace(c.QueryParam("type"))
	return f.Normalized(), nil
}

// queryTime parses an RFC 3339 timestamp or a YYYY-MM-DD date; the bool
// reports the latter.
func queryTime(c echo.Context, name string) (*time.Time, bool, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return nil, false, nil
	}
	if v, err := time.Parse(time.RFC3339, s); err == nil {
		v = v.UTC()
		return &v, false, nil
	}
	if v, err := time.Parse(time.DateOnly, s); err == nil {
		return &v, true, nil
	}
	return nil, false, badRequest("invalid " + name + " date")
}
