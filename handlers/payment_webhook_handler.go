package handlers

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/schoolms-api/services"
	"github.com/upb/schoolms-api/utils"
)

// maxWebhookBytes caps webhook payloads
const maxWebhookBytes = 1 << 20

// PaymentWebhookService is the part of services.PaymentWebhookService used over HTTP
type PaymentWebhookService interface {
	Handle(ctx context.Context, body []byte, signature string) (*services.WebhookAck, error)
}

// PaymentWebhookHandler receives signed payment gateway callbacks
type PaymentWebhookHandler struct {
	webhooks PaymentWebhookService
	logger   *zap.Logger
}

// NewPaymentWebhookHandler creates a new PaymentWebhookHandler
func NewPaymentWebhookHandler(webhooks PaymentWebhookService, logger *zap.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		webhooks: webhooks,
		logger:   logger,
	}
}

// HandleWebhook handles POST /api/payments/webhook.
// The signature covers the raw body, so it is read before any decoding.
//
// @Summary Payment gateway webhook
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Razorpay-Signature header string true "HMAC-SHA256 of the body"
// @Success 200 {object} services.WebhookAck
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/payments/webhook [post]
func (h *PaymentWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.logger, r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Failed to read request body", nil)
		return
	}

	ack, err := h.webhooks.Handle(r.Context(), body, r.Header.Get(services.SignatureHeader))
	if err != nil {
		HandleServiceError(w, err, log)
		return
	}

	writeOK(w, log, ack)
}
