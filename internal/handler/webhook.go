package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/revalidation-api/internal/billing"
)

// maxWebhookBody caps the payload read for signature verification.
const maxWebhookBody = 1 << 20

// WebhookHandler receives billing provider deliveries.
type WebhookHandler struct {
	Processor *billing.Processor
}

func NewWebhookHandler(p *billing.Processor) *WebhookHandler {
	if p == nil {
		panic("nil processor passed to NewWebhookHandler")
	}
	return &WebhookHandler{Processor: p}
}

// Stripe: POST /v1/webhooks/stripe.  The raw body is needed for the
// signature, so it is read before any JSON decoding.
func (h *WebhookHandler) Stripe(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return badRequest("unreadable body")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	out, err := h.Processor.Handle(ctx, payload, c.Request().Header.Get(billing.SignatureHeader))
	switch {
	case errors.Is(err, billing.ErrMissingSignature),
		errors.Is(err, billing.ErrInvalidSignature),
		errors.Is(err, billing.ErrTimestampExpired),
		errors.Is(err, billing.ErrMalformedEvent):
		return badRequest(err.Error())
	case err != nil:
		return err // 5xx makes the provider retry
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true, "outcome": out})
}
