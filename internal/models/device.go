package models

import (
	"time"
)

var (
	DeviceTypes = []string{
		"soil_moisture", "temperature", "humidity", "ph",
		"weather_station", "camera", "valve", "pump",
	}
	DeviceStatuses = []string{"online", "offline", "maintenance", "error"}
)

// Device is a sensor or actuator attached to a farm and/or a field.
// Either attachment may be absent, but at least one must be set so the
// ownership chain resolves to a farm.
type Device struct {
	Base
	FarmID       *uint      `gorm:"index" json:"farm_id,omitempty" example:"1"`
	FieldID      *uint      `gorm:"index" json:"field_id,omitempty" example:"3"`
	DeviceID     string     `gorm:"uniqueIndex;size:100;not null" json:"device_id" example:"sm-0017"`
	DeviceType   string     `gorm:"size:32;not null" json:"device_type" example:"soil_moisture"`
	Manufacturer string     `gorm:"size:100" json:"manufacturer,omitempty"`
	Model        string     `gorm:"size:100" json:"model,omitempty"`
	Protocol     string     `gorm:"size:50" json:"protocol,omitempty" example:"mqtt"`
	Location     string     `json:"location,omitempty"`
	Status       string     `gorm:"size:32;default:offline" json:"status" example:"offline"`
	LastReading  *time.Time `json:"last_reading,omitempty"`
	BatteryLevel *int       `json:"battery_level,omitempty" example:"87"` // percentage
}

// AddDevice is the payload for registering a device. DeviceID is
// generated when not supplied.
type AddDevice struct {
	FarmID       *uint  `json:"farm_id,omitempty"`
	FieldID      *uint  `json:"field_id,omitempty"`
	DeviceID     string `json:"device_id,omitempty"`
	DeviceType   string `json:"device_type"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Protocol     string `json:"protocol,omitempty"`
	Location     string `json:"location,omitempty"`
}

func (r *AddDevice) Validate() *ValidationError {
	if r.DeviceType == "" {
		err := NewFieldNotPresentError("device_type")
		return &err
	}
	if !oneOf(r.DeviceType, DeviceTypes) {
		err := NewFieldValidationError("device_type", "value not in "+setString(DeviceTypes))
		return &err
	}
	if r.FarmID == nil && r.FieldID == nil {
		err := NewFieldValidationError("farm_id", "device must be attached to a farm or a field")
		return &err
	}
	return nil
}

// UpdateDeviceStatus is the payload for a status transition
type UpdateDeviceStatus struct {
	Status string `json:"status" example:"online"`
}

func (r *UpdateDeviceStatus) Validate() *ValidationError {
	if r.Status == "" {
		err := NewFieldNotPresentError("status")
		return &err
	}
	if !oneOf(r.Status, DeviceStatuses) {
		err := NewFieldValidationError("status", "value not in "+setString(DeviceStatuses))
		return &err
	}
	return nil
}

// DeviceHeartbeat refreshes liveness data reported by the device itself
type DeviceHeartbeat struct {
	BatteryLevel *int       `json:"battery_level,omitempty"`
	LastReading  *time.Time `json:"last_reading,omitempty"`
}

func (r *DeviceHeartbeat) Validate() *ValidationError {
	if r.BatteryLevel != nil && (*r.BatteryLevel < 0 || *r.BatteryLevel > 100) {
		err := NewFieldValidationError("battery_level", "must be a percentage between 0 and 100")
		return &err
	}
	return nil
}
