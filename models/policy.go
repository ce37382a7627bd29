package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Policy is the durable record written after a verified payment. It is never
// updated or deleted.
type Policy struct {
	PolicyID  string         `gorm:"primaryKey;size:40" json:"policyId"`
	OrderID   string         `gorm:"size:64;not null;index" json:"orderId"`
	PaymentID string         `gorm:"size:64;not null" json:"paymentId"`
	PlanType  string         `gorm:"size:64" json:"planType,omitempty"`
	Amount    int64          `gorm:"not null" json:"amount"`
	Currency  string         `gorm:"size:3" json:"currency"`
	UserData  datatypes.JSON `gorm:"type:jsonb" json:"userData"`
	Timestamp time.Time      `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

func (Policy) TableName() string { return "policies" }

// UserContact is the subset of userData used for notifications and exports.
// Every field is optional.
type UserContact struct {
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	College     string `json:"college"`
	PlanType    string `json:"planType"`
	DateOfBirth string `json:"dob"`
}

// DisplayName prefers the full name and falls back to the email local part.
func (u UserContact) DisplayName() string {
	switch {
	case strings.TrimSpace(u.FullName) != "":
		return strings.TrimSpace(u.FullName)
	case strings.TrimSpace(u.Name) != "":
		return strings.TrimSpace(u.Name)
	case u.Email != "":
		local, _, _ := strings.Cut(u.Email, "@")
		return local
	}
	return "Customer"
}

// Contact decodes the well-known fields from UserData. Malformed data yields a
// zero UserContact.
func (p *Policy) Contact() UserContact {
	return ParseContact(p.UserData)
}

func ParseContact(raw []byte) UserContact {
	var c UserContact
	if len(raw) == 0 {
		return c
	}
	_ = json.Unmarshal(raw, &c)
	return c
}
