package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql" // pool pinged by the health check

	"github.com/google/uuid"                        // request id generator
	"github.com/labstack/echo/v4"                   // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware" // stock echo middleware (request id, recover, CORS)
	"github.com/rs/zerolog"                         // access log

	"github.com/iliyamo/revalidation-api/internal/billing"    // webhook processor
	"github.com/iliyamo/revalidation-api/internal/config"     // app configuration
	"github.com/iliyamo/revalidation-api/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/revalidation-api/internal/logging"    // request logging middleware
	"github.com/iliyamo/revalidation-api/internal/middleware" // import middleware for JWT authentication and rate limiting
	"github.com/iliyamo/revalidation-api/internal/model"      // record types for the generic handlers
	"github.com/iliyamo/revalidation-api/internal/repository" // data access
)

// Handlers bundles every handler the API exposes.  Webhooks may be nil when
// no signing secret is configured.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	WorkHours   *handler.RecordHandler[model.WorkHour, model.WorkHourInput, model.WorkHourPatch]
	CPD         *handler.RecordHandler[model.CPDHour, model.CPDInput, model.CPDPatch]
	Feedback    *handler.RecordHandler[model.Feedback, model.FeedbackInput, model.FeedbackPatch]
	Reflections *handler.RecordHandler[model.Reflection, model.ReflectionInput, model.ReflectionPatch]
	Appraisals  *handler.RecordHandler[model.Appraisal, model.AppraisalInput, model.AppraisalPatch]
	Calendar    *handler.RecordHandler[model.CalendarEvent, model.CalendarEventInput, model.CalendarEventPatch]
	Documents   *handler.RecordHandler[model.Document, model.DocumentInput, model.DocumentPatch]
	Webhooks    *handler.WebhookHandler
}

// NewHandlers builds every handler over db.  A nil processor leaves the
// webhook unregistered.
func NewHandlers(cfg config.Config, db *sql.DB, users *repository.UserRepo, processor *billing.Processor) Handlers {
	h := Handlers{
		Auth:        handler.NewAuthHandler(cfg, users),
		Users:       handler.NewUserHandler(users, repository.NewAccountRepo(db)),
		WorkHours:   handler.NewRecordHandler[model.WorkHour, model.WorkHourInput, model.WorkHourPatch](repository.NewWorkHourRepo(db)),
		CPD:         handler.NewRecordHandler[model.CPDHour, model.CPDInput, model.CPDPatch](repository.NewCPDRepo(db)),
		Feedback:    handler.NewRecordHandler[model.Feedback, model.FeedbackInput, model.FeedbackPatch](repository.NewFeedbackRepo(db)),
		Reflections: handler.NewRecordHandler[model.Reflection, model.ReflectionInput, model.ReflectionPatch](repository.NewReflectionRepo(db)),
		Appraisals:  handler.NewRecordHandler[model.Appraisal, model.AppraisalInput, model.AppraisalPatch](repository.NewAppraisalRepo(db)),
		Calendar:    handler.NewRecordHandler[model.CalendarEvent, model.CalendarEventInput, model.CalendarEventPatch](repository.NewCalendarEventRepo(db)),
		Documents:   handler.NewRecordHandler[model.Document, model.DocumentInput, model.DocumentPatch](repository.NewDocumentRepo(db)),
	}
	if processor != nil {
		h.Webhooks = handler.NewWebhookHandler(processor)
	}
	return h
}

// NewEcho creates the Echo instance with the validator, the envelope error
// handler and the global middleware chain installed.
func NewEcho(logger zerolog.Logger, production bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(production)

	// Request ids come first so every later log line can carry them.
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logging.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	return e
}

// RegisterRoutes registers routes that do not require authentication: the
// health check, registration, login and the billing webhook.
func RegisterRoutes(e *echo.Echo, db *sql.DB, h Handlers) {
	// Map GET /healthz to the Health handler for load balancers.
	e.GET("/healthz", handler.Health(db))

	// Unauthenticated account operations live under /v1/auth.
	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)

	// The webhook authenticates with its own signature header.
	if h.Webhooks != nil {
		e.POST("/v1/webhooks/stripe", h.Webhooks.Stripe)
	}
}

// RegisterAPI registers the protected /v1 API.  Every route runs JWTAuth
// first and then the limiter, so the limiter can key on the user id.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, limiter echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	if limiter != nil {
		auth.Use(limiter)
	}

	// The authenticated user's own profile and account.
	auth.GET("/users/me", h.Users.Me)
	auth.PATCH("/users/me", h.Users.UpdateMe)
	auth.DELETE("/users/me", h.Users.DeleteMe)

	// One CRUD resource per log table.
	h.WorkHours.Mount(auth.Group("/work-hours"))
	h.CPD.Mount(auth.Group("/cpd-hours"))
	h.Feedback.Mount(auth.Group("/feedback"))
	h.Reflections.Mount(auth.Group("/reflections"))
	h.Appraisals.Mount(auth.Group("/appraisals"))
	h.Calendar.Mount(auth.Group("/calendar-events"))
	h.Documents.Mount(auth.Group("/documents"))
}
