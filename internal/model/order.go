package model

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusOutForDelivery OrderStatus = "outForDelivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
)

const (
	PaymentMethodOnline = "online"
	PaymentMethodCOD    = "cod"
)

// allowedTransitions lists, per status, the statuses an order may move to.
// Re-applying the current status is always accepted.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusProcessing, OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusProcessing:     {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:      {},
	OrderStatusCancelled:      {},
}

func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Finished reports whether the order reached a terminal status and may be soft deleted.
func (s OrderStatus) Finished() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ValidateStatusTransition(current, next OrderStatus) error {
	if !next.Valid() {
		return fmt.Errorf("invalid order status %q", next)
	}
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("cannot transition order from %s to %s", current, next)
	}
	return nil
}

type Order struct {
	ID     string `gorm:"primaryKey;size:36;not null" json:"_id"`
	UserID string `gorm:"size:36;index;not null" json:"user"`

	FirstName string `gorm:"size:100" json:"firstName"`
	LastName  string `gorm:"size:100" json:"lastName"`
	Phone     string `gorm:"size:32" json:"phone"`
	Email     string `gorm:"size:255;index" json:"email"`
	Address   string `gorm:"size:255" json:"address"`
	City      string `gorm:"size:100" json:"city"`
	ZipCode   string `gorm:"size:20" json:"zipCode"`

	// pre-flat-schema orders kept their address nested
	ShippingAddress LegacyAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"-"`

	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	Subtotal float64 `gorm:"not null;default:0" json:"subtotal"`
	Tax      float64 `gorm:"not null;default:0" json:"tax"`
	Shipping float64 `gorm:"not null;default:0" json:"shipping"`
	Total    float64 `gorm:"not null;default:0" json:"total"`

	PaymentMethod   string        `gorm:"size:16;not null" json:"paymentMethod"`
	PaymentStatus   PaymentStatus `gorm:"size:16;index;not null" json:"paymentStatus"`
	Status          OrderStatus   `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	SessionID       string        `gorm:"size:255;index" json:"sessionId,omitempty"`
	PaymentIntentID string        `gorm:"size:255" json:"paymentIntentId,omitempty"`

	ExpectedDelivery *time.Time `json:"expectedDelivery,omitempty"`
	DeliveredAt      *time.Time `json:"deliveredAt,omitempty"`

	DeletedByAdmin    bool       `gorm:"not null;default:false;index" json:"deletedByAdmin"`
	AdminDeletedAt    *time.Time `json:"adminDeletedAt,omitempty"`
	DeletedByCustomer bool       `gorm:"not null;default:false;index" json:"deletedByCustomer"`
	CustomerDeletedAt *time.Time `json:"customerDeletedAt,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LegacyAddress struct {
	Address string `gorm:"size:255"`
	City    string `gorm:"size:100"`
	ZipCode string `gorm:"size:20"`
}

// OrderLine is one cart entry frozen at checkout. It never points back at the catalog.
type OrderLine struct {
	ID       uint         `gorm:"primaryKey" json:"_id"`
	OrderID  string       `gorm:"size:36;index;not null" json:"-"`
	Position int          `gorm:"not null" json:"-"`
	Item     ItemSnapshot `gorm:"embedded;embeddedPrefix:item_" json:"item"`
	Quantity int          `gorm:"not null" json:"quantity"`
}

type ItemSnapshot struct {
	Name     string  `gorm:"size:255;not null" json:"name"`
	Price    float64 `gorm:"not null" json:"price"`
	ImageURL string  `gorm:"size:512" json:"imageUrl"`
}
