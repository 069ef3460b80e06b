package handler

import (
	"food-ordering-api/internal/service"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

func (h *WebhookHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	err = h.webhookService.HandlePaymentWebhook(ctx, body, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}
