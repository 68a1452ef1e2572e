package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/services"
)

func TestHandleWebhook(t *testing.T) {
	logger := zap.NewNop()
	payload := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_123"}}}}`

	post := func(handler *PaymentWebhookHandler, signature string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(payload))
		if signature != "" {
			req.Header.Set(services.SignatureHeader, signature)
		}
		w := httptest.NewRecorder()
		handler.HandleWebhook(w, req)
		return w
	}

	t.Run("raw body and signature are passed through", func(t *testing.T) {
		svc := new(MockPaymentWebhookService)
		handler := NewPaymentWebhookHandler(svc, logger)

		svc.On("Handle", mock.Anything, []byte(payload), "abc123").
			Return(&services.WebhookAck{Event: services.EventPaymentCaptured, Handled: true}, nil)

		w := post(handler, "abc123")

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "payment.captured", data["event"])
		assert.Equal(t, true, data["handled"])
		svc.AssertExpectations(t)
	})

	t.Run("bad signature", func(t *testing.T) {
		svc := new(MockPaymentWebhookService)
		handler := NewPaymentWebhookHandler(svc, logger)

		svc.On("Handle", mock.Anything, mock.Anything, "").Return(nil, services.ErrInvalidSignature)

		w := post(handler, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid webhook signature", decodeBody(t, w)["message"])
	})
}
