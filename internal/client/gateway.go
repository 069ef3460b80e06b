package client

import "context"

// CheckoutGateway creates and looks up hosted checkout sessions.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

type CheckoutLineItem struct {
	Name       string
	UnitAmount int64 // minor units
	Quantity   int64
}

type CheckoutSessionRequest struct {
	Currency      string
	LineItems     []CheckoutLineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
	Paid            bool
}

// PaymentEvent is a verified gateway notification about a checkout session.
type PaymentEvent struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	Paid            bool
}

type WebhookVerifier interface {
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}
