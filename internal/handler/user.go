package handler

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/revalidation-api/internal/codec"
	"github.com/iliyamo/revalidation-api/internal/repository"
)

// profileFields are the keys a user may change on their own profile.
var profileFields = map[string]bool{
	codec.FieldName:               true,
	codec.FieldRegistrationNumber: true,
	codec.FieldRevalidationDate:   true,
	codec.FieldProfessionalRole:   true,
	codec.FieldWorkSetting:        true,
	codec.FieldScopeOfPractice:    true,
}

// UserHandler serves /v1/users/me.
type UserHandler struct {
	Users    *repository.UserRepo
	Accounts *repository.AccountRepo
}

func NewUserHandler(u *repository.UserRepo, a *repository.AccountRepo) *UserHandler {
	if u == nil || a == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Users: u, Accounts: a}
}

// Me: GET /v1/users/me
func (h *UserHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, u)
}

// UpdateMe: PATCH /v1/users/me.  The body is a partial object keyed by
// profile field; a JSON null clears the field.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var body map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return badRequest("invalid body")
	}
	if len(body) == 0 {
		return repository.ErrEmptyPatch
	}
	var unknown []string
	for k := range body {
		if !profileFields[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		details := make(map[string]string, len(unknown))
		for _, k := range unknown {
			details[k] = "cannot be updated"
		}
		return c.JSON(http.StatusBadRequest, errorBody{Error: "unsupported fields", Details: details})
	}
	if name, ok := body[codec.FieldName]; ok {
		if s, _ := name.(string); s == "" {
			return c.JSON(http.StatusBadRequest, errorBody{
				Error:   "validation failed",
				Details: map[string]string{codec.FieldName: "is required"},
			})
		}
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, uid, codec.UserPatch(body))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, u)
}

// DeleteMe: DELETE /v1/users/me removes the account and every record it owns.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Accounts.Delete(ctx, uid); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": true})
}
