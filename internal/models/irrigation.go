package models

import (
	"time"
)

var IrrigationMethods = []string{"drip", "sprinkler", "flood", "pivot", "manual"}

// IrrigationEvent is an append-only log entry for a watering run
type IrrigationEvent struct {
	Base
	FieldID     uint       `gorm:"index;not null" json:"field_id" example:"3"`
	StartTime   time.Time  `gorm:"index;not null" json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	WaterAmount *int       `json:"water_amount,omitempty" example:"1200"` // liters
	Method      string     `gorm:"size:32" json:"method,omitempty" example:"drip"`
	Automated   bool       `gorm:"default:false" json:"automated"`
	DeviceID    *uint      `json:"device_id,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// AddIrrigationEvent is the payload for logging an irrigation run
type AddIrrigationEvent struct {
	FieldID     uint       `json:"field_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	WaterAmount *int       `json:"water_amount,omitempty"`
	Method      string     `json:"method,omitempty"`
	Automated   bool       `json:"automated,omitempty"`
	DeviceID    *uint      `json:"device_id,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

func (r *AddIrrigationEvent) Validate() *ValidationError {
	if r.FieldID == 0 {
		err := NewFieldNotPresentError("field_id")
		return &err
	}
	if r.StartTime.IsZero() {
		err := NewFieldNotPresentError("start_time")
		return &err
	}
	if r.EndTime != nil && r.EndTime.Before(r.StartTime) {
		err := NewFieldValidationError("end_time", "must not be before start_time")
		return &err
	}
	if r.WaterAmount != nil && *r.WaterAmount < 0 {
		err := NewFieldValidationError("water_amount", "must not be negative")
		return &err
	}
	return validateEnum("method", r.Method, IrrigationMethods)
}
