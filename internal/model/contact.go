package model

import "time"

type ContactStatus string

const (
	ContactStatusPending    ContactStatus = "pending"
	ContactStatusInProgress ContactStatus = "in_progress"
	ContactStatusResolved   ContactStatus = "resolved"
	ContactStatusClosed     ContactStatus = "closed"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusPending, ContactStatusInProgress, ContactStatusResolved, ContactStatusClosed:
		return true
	}
	return false
}

type ContactPriority string

const (
	ContactPriorityLow    ContactPriority = "low"
	ContactPriorityMedium ContactPriority = "medium"
	ContactPriorityHigh   ContactPriority = "high"
	ContactPriorityUrgent ContactPriority = "urgent"
)

func (p ContactPriority) Valid() bool {
	switch p {
	case ContactPriorityLow, ContactPriorityMedium, ContactPriorityHigh, ContactPriorityUrgent:
		return true
	}
	return false
}

// ContactQuery is a message sent through the public contact form and worked on from the dashboard.
type ContactQuery struct {
	ID          string          `gorm:"primaryKey;size:36;not null" json:"_id"`
	FullName    string          `gorm:"size:100;not null" json:"fullName"`
	Email       string          `gorm:"size:255;not null;index" json:"email"`
	PhoneNumber string          `gorm:"size:32" json:"phoneNumber"`
	Address     string          `gorm:"size:512" json:"address"`
	DishName    string          `gorm:"size:255" json:"dishName,omitempty"`
	Query       string          `gorm:"column:query_text;type:text;not null" json:"query"`
	Status      ContactStatus   `gorm:"size:20;not null;default:pending;index" json:"status"`
	Priority    ContactPriority `gorm:"size:20;not null;default:medium" json:"priority"`
	AdminNotes  string          `gorm:"type:text" json:"adminNotes,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
