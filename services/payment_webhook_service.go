package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// SignatureHeader carries the gateway's HMAC of the raw request body
const SignatureHeader = "X-Razorpay-Signature"

// Webhook events acknowledged by the service
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundCreated   = "refund.created"
)

// WebhookEvent is the envelope of a gateway notification
type WebhookEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// WebhookAck is returned to the gateway
type WebhookAck struct {
	Event   string `json:"event"`
	Handled bool   `json:"handled"`
}

// PaymentWebhookService authenticates and acknowledges payment gateway notifications
type PaymentWebhookService struct {
	secret []byte
	logger *zap.Logger
}

// NewPaymentWebhookService creates a new PaymentWebhookService
func NewPaymentWebhookService(secret string, logger *zap.Logger) *PaymentWebhookService {
	return &PaymentWebhookService{secret: []byte(secret), logger: logger}
}

// Verify checks signature, a hex HMAC-SHA256 of body keyed with the webhook secret.
// Without a configured secret every notification is refused.
func (s *PaymentWebhookService) Verify(body []byte, signature string) error {
	if len(s.secret) == 0 {
		s.logger.Error("payment webhook received but no webhook secret is configured")
		return ErrInvalidSignature
	}

	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// Handle verifies and acknowledges a notification
func (s *PaymentWebhookService) Handle(ctx context.Context, body []byte, signature string) (*WebhookAck, error) {
	if err := s.Verify(body, signature); err != nil {
		s.logger.Warn("payment webhook rejected", zap.Error(err))
		return nil, err
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Event == "" {
		return nil, ErrInvalidPayloadBody
	}

	ack := &WebhookAck{Event: event.Event}
	switch event.Event {
	case EventPaymentCaptured, EventPaymentFailed, EventRefundCreated:
		ack.Handled = true
		s.logger.Info("payment webhook acknowledged", zap.String("event", event.Event))
	default:
		s.logger.Info("payment webhook ignored", zap.String("event", event.Event))
	}
	return ack, nil
}
