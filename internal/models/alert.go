package models

import (
	"time"
)

var (
	AlertTypes = []string{
		"weather", "irrigation", "pest", "disease", "harvest", "maintenance", "system",
	}
	AlertSeverities = []string{"info", "warning", "critical"}
)

// Alert is a user-rooted notification. The only mutation after
// creation is marking it read.
type Alert struct {
	Base
	UserID         uint       `gorm:"index;not null" json:"user_id" example:"1"`
	FarmID         *uint      `json:"farm_id,omitempty"`
	FieldID        *uint      `json:"field_id,omitempty"`
	AlertType      string     `gorm:"size:32;not null" json:"alert_type" example:"irrigation"`
	Severity       string     `gorm:"size:16;default:info" json:"severity" example:"warning"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Message        string     `gorm:"not null" json:"message"`
	IsRead         bool       `gorm:"default:false" json:"is_read"`
	ActionRequired bool       `gorm:"default:false" json:"action_required"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// AddAlert is the payload for raising an alert
type AddAlert struct {
	FarmID         *uint      `json:"farm_id,omitempty"`
	FieldID        *uint      `json:"field_id,omitempty"`
	AlertType      string     `json:"alert_type"`
	Severity       string     `json:"severity,omitempty"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	ActionRequired bool       `json:"action_required,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

func (r *AddAlert) Validate() *ValidationError {
	if r.AlertType == "" {
		err := NewFieldNotPresentError("alert_type")
		return &err
	}
	if !oneOf(r.AlertType, AlertTypes) {
		err := NewFieldValidationError("alert_type", "value not in "+setString(AlertTypes))
		return &err
	}
	if r.Title == "" {
		err := NewFieldNotPresentError("title")
		return &err
	}
	if r.Message == "" {
		err := NewFieldNotPresentError("message")
		return &err
	}
	return validateEnum("severity", r.Severity, AlertSeverities)
}
