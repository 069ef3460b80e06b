package model

import "time"

type User struct {
	ID         string `gorm:"primaryKey;size:36;not null" json:"_id"`
	Username   string `gorm:"size:100;not null" json:"username"`
	Email      string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string `gorm:"size:255;not null" json:"-"`
	IsVerified bool   `gorm:"not null;default:false" json:"isVerified"`

	VerificationPin          string     `gorm:"size:6" json:"-"`
	VerificationPinExpiresAt *time.Time `json:"-"`
	ResetPin                 string     `gorm:"size:6" json:"-"`
	ResetPinExpiresAt        *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Item is a menu entry managed from the admin dashboard.
type Item struct {
	ID          string  `gorm:"primaryKey;size:36;not null" json:"_id"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Category    string  `gorm:"size:64;index" json:"category"`
	Price       float64 `gorm:"not null" json:"price"`
	Rating      float64 `gorm:"not null;default:0" json:"rating"`
	Hearts      int     `gorm:"not null;default:0" json:"hearts"`
	Total       int     `gorm:"not null;default:0" json:"total"`
	ImageURL    string  `gorm:"size:512" json:"imageUrl"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SpecialOffer struct {
	ID                 string    `gorm:"primaryKey;size:36;not null" json:"_id"`
	Title              string    `gorm:"size:255;not null" json:"title"`
	Description        string    `gorm:"type:text" json:"description"`
	ItemID             string    `gorm:"size:36;index;not null" json:"itemId"`
	OriginalPrice      float64   `gorm:"not null" json:"originalPrice"`
	DiscountedPrice    float64   `gorm:"not null" json:"discountedPrice"`
	DiscountPercentage int       `gorm:"not null" json:"discountPercentage"`
	ValidUntil         time.Time `gorm:"index" json:"validUntil"`
	Priority           int       `gorm:"not null;default:0" json:"priority"`
	Tags               string    `gorm:"size:512" json:"tags"`
	ImageURL           string    `gorm:"size:512" json:"imageUrl"`
	IsActive           bool      `gorm:"not null;default:true;index" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WebhookEvent records a processed gateway event so redeliveries are ignored.
type WebhookEvent struct {
	EventID     string    `gorm:"primaryKey;size:255;not null"`
	EventType   string    `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

// CartLine is one menu item in a customer's cart. A customer holds at most one line per item.
type CartLine struct {
	ID       string `gorm:"primaryKey;size:36;not null" json:"_id"`
	UserID   string `gorm:"size:36;not null;uniqueIndex:idx_cart_user_item" json:"-"`
	ItemID   string `gorm:"size:36;not null;uniqueIndex:idx_cart_user_item" json:"itemId"`
	Quantity int    `gorm:"not null" json:"quantity"`
	Item     Item   `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"item"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
