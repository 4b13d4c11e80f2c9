package models

import (
	"time"
)

var FertilizationMethods = []string{"broadcast", "banding", "foliar", "fertigation"}

// FertilizationEvent is an append-only log entry for a fertilizer
// application
type FertilizationEvent struct {
	Base
	FieldID        uint      `gorm:"index;not null" json:"field_id" example:"3"`
	Date           time.Time `gorm:"index;not null" json:"date"`
	FertilizerType string    `gorm:"size:100" json:"fertilizer_type,omitempty"`
	Amount         *int      `json:"amount,omitempty" example:"50"` // kg
	Method         string    `gorm:"size:32" json:"method,omitempty" example:"broadcast"`
	NpkRatio       string    `gorm:"size:50" json:"npk_ratio,omitempty" example:"10-10-10"`
	Cost           *int      `json:"cost,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

// AddFertilizationEvent is the payload for logging a fertilizer
// application
type AddFertilizationEvent struct {
	FieldID        uint      `json:"field_id"`
	Date           time.Time `json:"date"`
	FertilizerType string    `json:"fertilizer_type,omitempty"`
	Amount         *int      `json:"amount,omitempty"`
	Method         string    `json:"method,omitempty"`
	NpkRatio       string    `json:"npk_ratio,omitempty"`
	Cost           *int      `json:"cost,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

func (r *AddFertilizationEvent) Validate() *ValidationError {
	if r.FieldID == 0 {
		err := NewFieldNotPresentError("field_id")
		return &err
	}
	if r.Date.IsZero() {
		err := NewFieldNotPresentError("date")
		return &err
	}
	if r.Amount != nil && *r.Amount < 0 {
		err := NewFieldValidationError("amount", "must not be negative")
		return &err
	}
	return validateEnum("method", r.Method, FertilizationMethods)
}
