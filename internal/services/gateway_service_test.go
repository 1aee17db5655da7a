package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripveda/booking-backend/internal/config"
	"github.com/tripveda/booking-backend/internal/models"
)

func newGatewayTestService(t *testing.T, handler http.HandlerFunc) (*GatewayService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return NewGatewayService(config.GatewayConfig{
		BaseURL:       server.URL,
		KeyID:         "rzp_test_key",
		KeySecret:     "rzp_test_secret",
		WebhookSecret: "whsec_test",
		Currency:      "INR",
	}, logger), server
}

func TestCreateOrderConvertsToSubunits(t *testing.T) {
	var received createOrderRequest
	service, _ := newGatewayTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(models.GatewayOrder{
			ID:       "order_abc",
			Amount:   received.Amount,
			Currency: received.Currency,
			Receipt:  received.Receipt,
			Status:   "created",
		})
	})

	order, err := service.CreateOrder(context.Background(), 1850.50, "pre-1", map[string]string{"trip_id": "trip-goa-01"})
	require.NoError(t, err)

	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(185050), received.Amount)
	assert.Equal(t, "INR", received.Currency)
	assert.Equal(t, "pre-1", received.Receipt)
	assert.Equal(t, "trip-goa-01", received.Notes["trip_id"])
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	service, _ := newGatewayTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := service.CreateOrder(context.Background(), 0, "pre-1", nil)
	assert.Error(t, err)
}

func TestCreateOrderSurfacesGatewayError(t *testing.T) {
	service, _ := newGatewayTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount exceeds maximum"}}`))
	})

	_, err := service.CreateOrder(context.Background(), 100, "pre-1", nil)
	var networkErr *models.NetworkError
	require.ErrorAs(t, err, &networkErr)
	assert.Contains(t, err.Error(), "amount exceeds maximum")
}

func TestCreateOrderUnconfigured(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	service := NewGatewayService(config.GatewayConfig{}, logger)

	_, err := service.CreateOrder(context.Background(), 100, "pre-1", nil)
	assert.Error(t, err)
	assert.False(t, service.IsConfigured())
}

func TestVerifySignature(t *testing.T) {
	service, _ := newGatewayTestService(t, nil)

	mac := hmac.New(sha256.New, []byte("rzp_test_secret"))
	mac.Write([]byte("order_abc|pay_xyz"))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, service.VerifySignature("order_abc", "pay_xyz", valid))
	assert.False(t, service.VerifySignature("order_abc", "pay_xyz", valid[:len(valid)-1]+"0"))
	assert.False(t, service.VerifySignature("order_abc", "pay_other", valid))
	assert.False(t, service.VerifySignature("order_abc", "pay_xyz", ""))
}

func TestVerifyWebhookSignature(t *testing.T) {
	service, _ := newGatewayTestService(t, nil)
	body := []byte(`{"event":"payment.captured"}`)

	mac := hmac.New(sha256.New, []byte("whsec_test"))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, service.VerifyWebhookSignature(body, valid))
	assert.False(t, service.VerifyWebhookSignature([]byte(`{}`), valid))
}
