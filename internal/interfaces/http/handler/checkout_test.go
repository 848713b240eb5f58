package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderapp "github.com/cartoprint/backend/internal/application/order"
	"github.com/cartoprint/backend/internal/interfaces/http/dto"
)

func performGet(t *testing.T, handlerFn gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)

	handlerFn(c)
	return w
}

func TestCheckoutHandler_Complete(t *testing.T) {
	gateway := &stubGateway{sessionPaid: true}
	svc := newTestService(t, gateway)
	h := NewCheckoutHandler(svc)

	result, err := svc.Create(context.Background(), orderapp.CreateRequest{
		City:    "Paris",
		Country: "France",
	})
	require.NoError(t, err)
	o := result.Order

	w := performGet(t, h.Complete, "/checkout/success?session_id=cs_"+o.ID)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	got := data["order"].(map[string]interface{})
	assert.Equal(t, "fulfilled", got["status"])
	assert.Equal(t, true, got["paid"])
}

func TestCheckoutHandler_Complete_UnpaidSession(t *testing.T) {
	gateway := &stubGateway{sessionPaid: false}
	svc := newTestService(t, gateway)
	h := NewCheckoutHandler(svc)

	result, err := svc.Create(context.Background(), orderapp.CreateRequest{
		City:    "Paris",
		Country: "France",
	})
	require.NoError(t, err)

	w := performGet(t, h.Complete, "/checkout/success?session_id=cs_"+result.Order.ID)

	require.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodePaymentRequired, resp.Error.Code)
}

func TestCheckoutHandler_Complete_MissingSessionID(t *testing.T) {
	h := NewCheckoutHandler(newTestService(t, &stubGateway{}))

	w := performGet(t, h.Complete, "/checkout/success")

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutHandler_Cancel(t *testing.T) {
	svc := newTestService(t, &stubGateway{})
	h := NewCheckoutHandler(svc)

	result, err := svc.Create(context.Background(), orderapp.CreateRequest{
		City:    "Paris",
		Country: "France",
	})
	require.NoError(t, err)

	w := performGet(t, h.Cancel, "/checkout/cancel?order_id="+result.Order.ID)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	got := data["order"].(map[string]interface{})
	assert.Equal(t, "awaiting_payment", got["status"])
}

func TestCheckoutHandler_Cancel_MissingOrderID(t *testing.T) {
	h := NewCheckoutHandler(newTestService(t, &stubGateway{}))

	w := performGet(t, h.Cancel, "/checkout/cancel")

	require.Equal(t, http.StatusBadRequest, w.Code)
}
