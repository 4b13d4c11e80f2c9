package models

import (
	"time"
)

// SensorReading is an append-only sample reported by a device. The
// value is stored as an opaque string so one table can carry every
// reading type; no unit conversion happens at this layer.
type SensorReading struct {
	Base
	DeviceID    uint      `gorm:"index;not null" json:"device_id" example:"7"`
	FieldID     *uint     `gorm:"index" json:"field_id,omitempty"`
	ReadingType string    `gorm:"size:100;not null" json:"reading_type" example:"soil_moisture"`
	Value       string    `gorm:"not null" json:"value" example:"34.2"`
	Unit        string    `gorm:"size:50" json:"unit,omitempty" example:"%"`
	Timestamp   time.Time `gorm:"index;not null" json:"timestamp"`
}

// AddSensorReading is the payload for appending a reading
type AddSensorReading struct {
	DeviceID    uint       `json:"device_id"`
	FieldID     *uint      `json:"field_id,omitempty"`
	ReadingType string     `json:"reading_type"`
	Value       string     `json:"value"`
	Unit        string     `json:"unit,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

func (r *AddSensorReading) Validate() *ValidationError {
	if r.DeviceID == 0 {
		err := NewFieldNotPresentError("device_id")
		return &err
	}
	if r.ReadingType == "" {
		err := NewFieldNotPresentError("reading_type")
		return &err
	}
	if r.Value == "" {
		err := NewFieldNotPresentError("value")
		return &err
	}
	return nil
}
