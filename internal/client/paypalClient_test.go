package client

import (
	"context"
	"encoding/json"
	"food-ordering-api/internal/config"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paypalStub struct {
	mu       sync.Mutex
	created  map[string]interface{}
	captures int
}

func (s *paypalStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "access-123"})
	})

	authorized := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer access-123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("/v2/checkout/orders", authorized(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.created = payload
		s.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"PP-1","status":"CREATED","links":[
			{"rel":"self","href":"https://paypal.test/orders/PP-1"},
			{"rel":"approve","href":"https://paypal.test/checkoutnow?token=PP-1"}
		]}`))
	}))

	mux.HandleFunc("/v2/checkout/orders/PP-1", authorized(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"PP-1","status":"APPROVED"}`))
	}))

	mux.HandleFunc("/v2/checkout/orders/PP-1/capture", authorized(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.captures++
		s.mu.Unlock()

		w.Write([]byte(`{"id":"PP-1","status":"COMPLETED","purchase_units":[
			{"payments":{"captures":[{"id":"CAP-9","status":"COMPLETED"}]}}
		]}`))
	}))

	mux.HandleFunc("/v2/checkout/orders/PP-2", authorized(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"PP-2","status":"CREATED"}`))
	}))

	mux.HandleFunc("/v2/checkout/orders/PP-404", authorized(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"name":"RESOURCE_NOT_FOUND"}`))
	}))

	return mux
}

func (s *paypalStub) captureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captures
}

func newPaypalTestGateway(t *testing.T) (CheckoutGateway, *paypalStub) {
	t.Helper()

	stub := &paypalStub{}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	return NewPaypalGateway(&config.Paypal{
		BaseApiURL:   srv.URL + "/",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}), stub
}

func TestPaypalCreateCheckoutSession(t *testing.T) {
	gateway, stub := newPaypalTestGateway(t)

	sess, err := gateway.CreateCheckoutSession(context.Background(), &CheckoutSessionRequest{
		Currency: "inr",
		LineItems: []CheckoutLineItem{
			{Name: "Dosa", UnitAmount: 8000, Quantity: 2},
			{Name: "Lassi", UnitAmount: 2050, Quantity: 1},
		},
		SuccessURL: "http://localhost:5173/myorder/verify?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "http://localhost:5173/checkout?payment_status=cancel",
	})
	require.NoError(t, err)

	assert.Equal(t, "PP-1", sess.ID)
	assert.Equal(t, "https://paypal.test/checkoutnow?token=PP-1", sess.URL)
	assert.False(t, sess.Paid)

	stub.mu.Lock()
	defer stub.mu.Unlock()
	require.NotNil(t, stub.created)
	assert.Equal(t, "CAPTURE", stub.created["intent"])

	units := stub.created["purchase_units"].([]interface{})
	amount := units[0].(map[string]interface{})["amount"].(map[string]interface{})
	assert.Equal(t, "INR", amount["currency_code"])
	assert.Equal(t, "180.50", amount["value"])

	appCtx := stub.created["application_context"].(map[string]interface{})
	assert.Equal(t, "http://localhost:5173/myorder/verify?success=true", appCtx["return_url"])
	assert.Equal(t, "http://localhost:5173/checkout?payment_status=cancel", appCtx["cancel_url"])
}

func TestPaypalRetrieveCheckoutSession(t *testing.T) {
	gateway, stub := newPaypalTestGateway(t)
	ctx := context.Background()

	sess, err := gateway.RetrieveCheckoutSession(ctx, "PP-1")
	require.NoError(t, err)
	assert.True(t, sess.Paid)
	assert.Equal(t, "CAP-9", sess.PaymentIntentID)
	assert.Equal(t, 1, stub.captureCount())

	sess, err = gateway.RetrieveCheckoutSession(ctx, "PP-2")
	require.NoError(t, err)
	assert.False(t, sess.Paid)
	assert.Empty(t, sess.PaymentIntentID)
	assert.Equal(t, 1, stub.captureCount())

	_, err = gateway.RetrieveCheckoutSession(ctx, "PP-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paypal error 404")
}

func TestPaypalBadCredentials(t *testing.T) {
	stub := &paypalStub{}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	gateway := NewPaypalGateway(&config.Paypal{BaseApiURL: srv.URL, ClientID: "client-id", ClientSecret: "wrong"})

	_, err := gateway.RetrieveCheckoutSession(context.Background(), "PP-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paypal token error 401")
}

func TestStripSessionPlaceholder(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{
			raw:  "http://localhost:5173/myorder/verify?success=true&session_id={CHECKOUT_SESSION_ID}",
			want: "http://localhost:5173/myorder/verify?success=true",
		},
		{
			raw:  "http://localhost:5173/myorder/verify?success=true",
			want: "http://localhost:5173/myorder/verify?success=true",
		},
		{
			raw:  "http://localhost:5173/done",
			want: "http://localhost:5173/done",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, stripSessionPlaceholder(tt.raw))
	}
}
