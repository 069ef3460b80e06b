package dto

import (
	"bytes"
	"encoding/json"
	"food-ordering-api/internal/model"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Number accepts a JSON number, a numeric string or a bool and never fails to decode.
// Anything that does not parse becomes 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		*n = 0
		return nil
	}

	switch v := raw.(type) {
	case float64:
		*n = Number(v)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			*n = 0
			return nil
		}
		f, _ := d.Float64()
		*n = Number(f)
	case bool:
		if v {
			*n = 1
		} else {
			*n = 0
		}
	default:
		*n = 0
	}
	return nil
}

func (n Number) Float64() float64 {
	return float64(n)
}

// Int truncates toward zero.
func (n Number) Int() int {
	return int(decimal.NewFromFloat(float64(n)).IntPart())
}

type ItemInput struct {
	Name     string  `json:"name"`
	Price    *Number `json:"price"`
	ImageURL string  `json:"imageUrl"`
}

// OrderItemInput accepts both the nested {item: {...}, quantity} shape and flat fields.
type OrderItemInput struct {
	Item     *ItemInput `json:"item"`
	Name     string     `json:"name"`
	Price    *Number    `json:"price"`
	ImageURL string     `json:"imageUrl"`
	Quantity Number     `json:"quantity"`
}

// OrderItems decodes to nil instead of failing when the payload is not an array.
type OrderItems []OrderItemInput

func (items *OrderItems) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*items = nil
		return nil
	}

	var decoded []OrderItemInput
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		*items = nil
		return nil
	}
	*items = decoded
	return nil
}

type CreateOrderRequest struct {
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	ZipCode       string     `json:"zipCode"`
	PaymentMethod string     `json:"paymentMethod"`
	Subtotal      Number     `json:"subtotal"`
	Tax           Number     `json:"tax"`
	Total         Number     `json:"total"`
	Items         OrderItems `json:"items"`
}

type CreateOrderResponse struct {
	Order       *OrderResponse `json:"order"`
	CheckoutURL *string        `json:"checkouturl"`
}

// AdminOrderPatch holds the fields an administrator may change. Nil means untouched.
type AdminOrderPatch struct {
	FirstName        *string    `json:"firstName"`
	LastName         *string    `json:"lastName"`
	Phone            *string    `json:"phone"`
	Email            *string    `json:"email"`
	Address          *string    `json:"address"`
	City             *string    `json:"city"`
	ZipCode          *string    `json:"zipCode"`
	Subtotal         *Number    `json:"subtotal"`
	Tax              *Number    `json:"tax"`
	Shipping         *Number    `json:"shipping"`
	Total            *Number    `json:"total"`
	PaymentStatus    *string    `json:"paymentStatus"`
	Status           *string    `json:"status"`
	ExpectedDelivery *time.Time `json:"expectedDelivery"`
	DeliveredAt      *time.Time `json:"deliveredAt"`
}

// CustomerOrderPatch holds the fields an owner may change. Email is only compared.
type CustomerOrderPatch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	ZipCode   *string `json:"zipCode"`
	Status    *string `json:"status"`
}

type OrderLineResponse struct {
	ID       uint               `json:"_id"`
	Item     model.ItemSnapshot `json:"item"`
	Quantity int                `json:"quantity"`
}

type OrderResponse struct {
	ID                string              `json:"_id"`
	User              string              `json:"user"`
	FirstName         string              `json:"firstName"`
	LastName          string              `json:"lastName"`
	Email             string              `json:"email"`
	Phone             string              `json:"phone"`
	Address           string              `json:"address"`
	City              string              `json:"city"`
	ZipCode           string              `json:"zipCode"`
	PaymentMethod     string              `json:"paymentMethod"`
	PaymentStatus     model.PaymentStatus `json:"paymentStatus"`
	Status            model.OrderStatus   `json:"status"`
	Subtotal          float64             `json:"subtotal"`
	Tax               float64             `json:"tax"`
	Shipping          float64             `json:"shipping"`
	Total             float64             `json:"total"`
	SessionID         string              `json:"sessionId,omitempty"`
	PaymentIntentID   string              `json:"paymentIntentId,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
	ExpectedDelivery  *time.Time          `json:"expectedDelivery"`
	DeliveredAt       *time.Time          `json:"deliveredAt"`
	DeletedByAdmin    bool                `json:"deletedByAdmin"`
	DeletedByCustomer bool                `json:"deletedByCustomer"`
	Items             []OrderLineResponse `json:"items"`
}

// NewOrderResponse projects an order into the stable response shape. With
// legacyAddress set, empty flat address fields fall back to the nested legacy ones.
func NewOrderResponse(o *model.Order, legacyAddress bool) *OrderResponse {
	status := o.Status
	if status == "" {
		status = model.OrderStatusPending
	}

	resp := &OrderResponse{
		ID:                o.ID,
		User:              o.UserID,
		FirstName:         o.FirstName,
		LastName:          o.LastName,
		Email:             o.Email,
		Phone:             o.Phone,
		Address:           o.Address,
		City:              o.City,
		ZipCode:           o.ZipCode,
		PaymentMethod:     o.PaymentMethod,
		PaymentStatus:     o.PaymentStatus,
		Status:            status,
		Subtotal:          o.Subtotal,
		Tax:               o.Tax,
		Shipping:          o.Shipping,
		Total:             o.Total,
		SessionID:         o.SessionID,
		PaymentIntentID:   o.PaymentIntentID,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		ExpectedDelivery:  o.ExpectedDelivery,
		DeliveredAt:       o.DeliveredAt,
		DeletedByAdmin:    o.DeletedByAdmin,
		DeletedByCustomer: o.DeletedByCustomer,
		Items:             make([]OrderLineResponse, 0, len(o.Lines)),
	}

	if legacyAddress {
		if resp.Address == "" {
			resp.Address = o.ShippingAddress.Address
		}
		if resp.City == "" {
			resp.City = o.ShippingAddress.City
		}
		if resp.ZipCode == "" {
			resp.ZipCode = o.ShippingAddress.ZipCode
		}
	}

	for _, line := range o.Lines {
		resp.Items = append(resp.Items, OrderLineResponse{
			ID:       line.ID,
			Item:     line.Item,
			Quantity: line.Quantity,
		})
	}

	return resp
}

type OrderListResponse struct {
	Success bool             `json:"success"`
	Orders  []*OrderResponse `json:"orders"`
	Count   int              `json:"count"`
}

type OrderActionResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Order   *OrderResponse `json:"order"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PinRequest struct {
	Email string `json:"email" validate:"required,email"`
	Pin   string `json:"pin" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Pin         string `json:"pin" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type AuthResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token,omitempty"`
	User    *model.User `json:"user,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
}

type ItemRequest struct {
	Name        string  `json:"name" form:"name" validate:"required,max=255"`
	Description string  `json:"description" form:"description"`
	Category    string  `json:"category" form:"category"`
	Price       float64 `json:"price" form:"price" validate:"gte=0"`
	Rating      float64 `json:"rating" form:"rating" validate:"gte=0,lte=5"`
	Hearts      int     `json:"hearts" form:"hearts" validate:"gte=0"`
	Total       int     `json:"total" form:"total" validate:"gte=0"`
	ImageURL    string  `json:"imageUrl" form:"imageUrl"`
}

type SpecialOfferRequest struct {
	Title              string  `json:"title" form:"title" validate:"required,max=255"`
	Description        string  `json:"description" form:"description"`
	ItemID             string  `json:"itemId" form:"itemId" validate:"required"`
	OriginalPrice      float64 `json:"originalPrice" form:"originalPrice" validate:"gt=0"`
	DiscountedPrice    float64 `json:"discountedPrice" form:"discountedPrice" validate:"gt=0"`
	DiscountPercentage int     `json:"discountPercentage" form:"discountPercentage" validate:"gte=0,lte=100"`
	ValidUntil         string  `json:"validUntil" form:"validUntil" validate:"required"`
	Priority           int     `json:"priority" form:"priority"`
	Tags               string  `json:"tags" form:"tags"`
	ImageURL           string  `json:"imageUrl" form:"imageUrl"`
}

type CartItemRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0,max=99"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,max=99"`
}

type CartLineResponse struct {
	ID        string      `json:"_id"`
	Item      *model.Item `json:"item"`
	Quantity  int         `json:"quantity"`
	LineTotal float64     `json:"lineTotal"`
}

type CartResponse struct {
	Success  bool                `json:"success"`
	Items    []*CartLineResponse `json:"items"`
	Count    int                 `json:"count"`
	Subtotal float64             `json:"subtotal"`
}

// NewCartResponse prices the lines at current catalog prices. Lines whose item is gone are skipped.
func NewCartResponse(lines []*model.CartLine) *CartResponse {
	resp := &CartResponse{
		Success: true,
		Items:   make([]*CartLineResponse, 0, len(lines)),
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Item.ID == "" {
			continue
		}
		item := line.Item
		lineTotal := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		resp.Items = append(resp.Items, &CartLineResponse{
			ID:        line.ID,
			Item:      &item,
			Quantity:  line.Quantity,
			LineTotal: lineTotal.Round(2).InexactFloat64(),
		})
		resp.Count += line.Quantity
	}
	resp.Subtotal = subtotal.Round(2).InexactFloat64()
	return resp
}

type ContactQueryRequest struct {
	FullName    string `json:"fullName" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"max=32"`
	Address     string `json:"address" validate:"max=512"`
	DishName    string `json:"dishName" validate:"max=255"`
	Query       string `json:"query" validate:"required,max=2000"`
	Priority    string `json:"priority"`
}

type ContactStatusRequest struct {
	Status     string `json:"status" validate:"required"`
	AdminNotes string `json:"adminNotes"`
}

type ContactStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Resolved int `json:"resolved"`
	Urgent   int `json:"urgent"`
}

type ContactListResponse struct {
	Success bool                  `json:"success"`
	Data    []*model.ContactQuery `json:"data"`
	Stats   ContactStats          `json:"stats"`
}

type ContactResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    *model.ContactQuery `json:"data"`
}
