package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"food-ordering-api/internal/config"
	"food-ordering-api/internal/model"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const sessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

type paypalGatewayImpl struct {
	httpClient         *http.Client
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
}

// NewPaypalGateway serves checkout through PayPal Orders v2. The PayPal order id plays
// the role of the session id and comes back on the return URL as "token".
func NewPaypalGateway(paypalCfg *config.Paypal) CheckoutGateway {
	return &paypalGatewayImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:         strings.TrimRight(paypalCfg.BaseApiURL, "/"),
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
	}
}

func (c *paypalGatewayImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode paypal token: %w", err)
	}

	return res.AccessToken, nil
}

func (c *paypalGatewayImpl) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	var totalMinor int64
	for _, item := range req.LineItems {
		totalMinor += item.UnitAmount * item.Quantity
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": model.Amount{
					Currency: strings.ToUpper(req.Currency),
					Value:    decimal.New(totalMinor, -2).StringFixed(2),
				},
			},
		},
		"application_context": map[string]string{
			"return_url": stripSessionPlaceholder(req.SuccessURL),
			"cancel_url": req.CancelURL,
		},
	}

	var order model.PaypalOrder
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", payload, &order); err != nil {
		return nil, fmt.Errorf("create paypal order: %w", err)
	}

	return &CheckoutSession{
		ID:  order.ID,
		URL: order.ApproveURL(),
	}, nil
}

// RetrieveCheckoutSession captures an approved order so that a confirmed session
// always means money was taken.
func (c *paypalGatewayImpl) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var order model.PaypalOrder
	if err := c.do(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(sessionID), nil, &order); err != nil {
		return nil, fmt.Errorf("get paypal order: %w", err)
	}

	if order.Status == "APPROVED" {
		captured := model.PaypalOrder{}
		path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(sessionID))
		if err := c.do(ctx, http.MethodPost, path, nil, &captured); err != nil {
			return nil, fmt.Errorf("capture paypal order: %w", err)
		}
		order = captured
	}

	return &CheckoutSession{
		ID:              order.ID,
		URL:             order.ApproveURL(),
		PaymentIntentID: order.CaptureID(),
		Paid:            order.Status == "COMPLETED",
	}, nil
}

func (c *paypalGatewayImpl) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get paypal access token: %w", err)
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal req payload: %w", err)
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode paypal response: %w", err)
	}
	return nil
}

// stripSessionPlaceholder drops query parameters that carry the Stripe-style session
// placeholder; PayPal appends its own token instead.
func stripSessionPlaceholder(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for key, values := range q {
		for _, v := range values {
			if v == sessionIDPlaceholder {
				q.Del(key)
				break
			}
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
