package handler

import (
	"errors"   // errors.Is on repository sentinels
	"fmt"      // wraps sentinels with context
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // token expiry in responses

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/revalidation-api/internal/config"     // app configuration
	"github.com/iliyamo/revalidation-api/internal/model"      // user shape returned to clients
	"github.com/iliyamo/revalidation-api/internal/repository" // DB repositories
	"github.com/iliyamo/revalidation-api/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Name               string  `json:"name" validate:"required,max=255"`
	Email              string  `json:"email" validate:"required,email,max=255"`
	Password           string  `json:"password" validate:"required,min=8,max=72"`
	RegistrationNumber *string `json:"registration_number" validate:"omitempty,max=50"`
	ProfessionalRole   *string `json:"professional_role" validate:"omitempty,max=100"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User   *model.User `json:"user"`
	Access tokenPart   `json:"access"`
}

// Register: create an unverified user and return an access token.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	// Create reports a taken email or registration number as a wrapped
	// ErrConflict whose message names the field
	u, err := h.Users.Create(ctx, repository.NewUser{
		Name:               strings.TrimSpace(req.Name),
		Email:              req.Email,
		Password:           req.Password,
		RegistrationNumber: req.RegistrationNumber,
		ProfessionalRole:   req.ProfessionalRole,
	}, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	return h.issue(c, http.StatusCreated, u)
}

// Login: verify credentials and return a new access token.  Blocked
// accounts are refused before the password is looked at.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return err
	}
	if u.Blocked {
		return fmt.Errorf("%w: account is blocked", repository.ErrForbidden)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	return h.issue(c, http.StatusOK, u)
}

func (h *AuthHandler) issue(c echo.Context, status int, u *model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	return respond(c, status, authResp{
		User:   u,
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
