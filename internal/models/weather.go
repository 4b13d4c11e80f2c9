package models

import (
	"time"
)

// WeatherSample is one weather observation for a farm. Fractional
// quantities are stored as fixed-point integers (temperature, rainfall
// and wind speed are multiplied by ten) to match the reference schema.
type WeatherSample struct {
	Base
	FarmID        uint      `gorm:"index;not null" json:"farm_id" example:"1"`
	Timestamp     time.Time `gorm:"index;not null" json:"timestamp"`
	Temperature   *int      `json:"temperature,omitempty" example:"255"` // celsius x10
	Humidity      *int      `json:"humidity,omitempty" example:"40"`     // percentage
	Rainfall      *int      `json:"rainfall,omitempty"`                  // mm x10
	WindSpeed     *int      `json:"wind_speed,omitempty"`                // km/h x10
	WindDirection *int      `json:"wind_direction,omitempty"`            // degrees
	Pressure      *int      `json:"pressure,omitempty"`                  // hPa
	UvIndex       *int      `json:"uv_index,omitempty"`
	Source        string    `gorm:"size:50" json:"source,omitempty" example:"sensor"`
}

// AddWeatherSample is the payload for recording an observation
type AddWeatherSample struct {
	FarmID        uint       `json:"farm_id"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Temperature   *int       `json:"temperature,omitempty"`
	Humidity      *int       `json:"humidity,omitempty"`
	Rainfall      *int       `json:"rainfall,omitempty"`
	WindSpeed     *int       `json:"wind_speed,omitempty"`
	WindDirection *int       `json:"wind_direction,omitempty"`
	Pressure      *int       `json:"pressure,omitempty"`
	UvIndex       *int       `json:"uv_index,omitempty"`
	Source        string     `json:"source,omitempty"`
}

func (r *AddWeatherSample) Validate() *ValidationError {
	if r.FarmID == 0 {
		err := NewFieldNotPresentError("farm_id")
		return &err
	}
	if r.Humidity != nil && (*r.Humidity < 0 || *r.Humidity > 100) {
		err := NewFieldValidationError("humidity", "must be a percentage between 0 and 100")
		return &err
	}
	if r.WindDirection != nil && (*r.WindDirection < 0 || *r.WindDirection >= 360) {
		err := NewFieldValidationError("wind_direction", "must be in degrees between 0 and 359")
		return &err
	}
	return nil
}
