package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderapp "github.com/cartoprint/backend/internal/application/order"
	"github.com/cartoprint/backend/internal/infrastructure/payment"
)

func performWebhook(t *testing.T, h *StripeWebhookHandler, body string, signature string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader([]byte(body)))
	if signature != "" {
		c.Request.Header.Set("Stripe-Signature", signature)
	}

	h.HandleStripeWebhook(c)
	return w
}

func TestStripeWebhook_SettlesOrder(t *testing.T) {
	gateway := &stubGateway{}
	svc := newTestService(t, gateway)
	h := NewStripeWebhookHandler(svc)

	result, err := svc.Create(context.Background(), orderapp.CreateRequest{
		City:    "Paris",
		Country: "France",
	})
	require.NoError(t, err)
	o := result.Order

	gateway.event = &payment.PaymentEvent{
		Type:      "checkout.session.completed",
		SessionID: "cs_" + o.ID,
		OrderID:   o.ID,
		Paid:      true,
	}

	w := performWebhook(t, h, `{}`, "t=1,v1=sig")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)

	settled, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, settled.Paid)
}

func TestStripeWebhook_MissingSignature(t *testing.T) {
	h := NewStripeWebhookHandler(newTestService(t, &stubGateway{}))

	w := performWebhook(t, h, `{}`, "")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Missing Stripe-Signature")
}

func TestStripeWebhook_BadSignature(t *testing.T) {
	gateway := &stubGateway{
		verifyErr: fmt.Errorf("stripe: %w: bad", payment.ErrInvalidSignature),
	}
	h := NewStripeWebhookHandler(newTestService(t, gateway))

	w := performWebhook(t, h, `{}`, "t=1,v1=bogus")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "signature verification failed")
}

func TestStripeWebhook_PayloadTooLarge(t *testing.T) {
	h := NewStripeWebhookHandler(newTestService(t, &stubGateway{}))

	w := performWebhook(t, h, strings.Repeat("a", maxWebhookPayloadSize+1), "t=1,v1=sig")

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestStripeWebhook_IgnoresOtherEvents(t *testing.T) {
	gateway := &stubGateway{
		event: &payment.PaymentEvent{Type: "invoice.paid"},
	}
	h := NewStripeWebhookHandler(newTestService(t, gateway))

	w := performWebhook(t, h, `{}`, "t=1,v1=sig")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)
}
