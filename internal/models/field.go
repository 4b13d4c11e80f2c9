package models

import (
	"time"
)

var (
	IrrigationTypes = []string{"drip", "sprinkler", "flood", "pivot", "manual"}
	FieldStatuses   = []string{"active", "fallow", "preparing", "harvesting"}
)

// Field is a plot inside a farm
type Field struct {
	Base
	FarmID              uint       `gorm:"index;not null" json:"farm_id" example:"1"`
	Name                string     `gorm:"size:255;not null" json:"name" example:"east block"`
	Area                int        `gorm:"not null" json:"area" example:"2500"` // square meters
	Boundaries          string     `json:"boundaries,omitempty"`                // polygon JSON
	SoilType            string     `gorm:"size:100" json:"soil_type,omitempty"`
	CropType            string     `gorm:"size:100" json:"crop_type,omitempty"`
	PlantingDate        *time.Time `json:"planting_date,omitempty"`
	ExpectedHarvestDate *time.Time `json:"expected_harvest_date,omitempty"`
	IrrigationType      string     `gorm:"size:32" json:"irrigation_type,omitempty" example:"drip"`
	Status              string     `gorm:"size:32;default:active" json:"status" example:"active"`
}

// AddField is the payload for creating a field
type AddField struct {
	FarmID              uint       `json:"farm_id"`
	Name                string     `json:"name"`
	Area                int        `json:"area"`
	Boundaries          string     `json:"boundaries,omitempty"`
	SoilType            string     `json:"soil_type,omitempty"`
	CropType            string     `json:"crop_type,omitempty"`
	PlantingDate        *time.Time `json:"planting_date,omitempty"`
	ExpectedHarvestDate *time.Time `json:"expected_harvest_date,omitempty"`
	IrrigationType      string     `json:"irrigation_type,omitempty"`
}

func (r *AddField) Validate() *ValidationError {
	if r.FarmID == 0 {
		err := NewFieldNotPresentError("farm_id")
		return &err
	}
	if r.Name == "" {
		err := NewFieldNotPresentError("name")
		return &err
	}
	if r.Area <= 0 {
		err := NewFieldValidationError("area", "must be a positive area in square meters")
		return &err
	}
	return validateEnum("irrigation_type", r.IrrigationType, IrrigationTypes)
}

// UpdateField is the payload for patching a field
type UpdateField struct {
	Name                *string    `json:"name,omitempty"`
	Area                *int       `json:"area,omitempty"`
	Boundaries          *string    `json:"boundaries,omitempty"`
	SoilType            *string    `json:"soil_type,omitempty"`
	CropType            *string    `json:"crop_type,omitempty"`
	PlantingDate        *time.Time `json:"planting_date,omitempty"`
	ExpectedHarvestDate *time.Time `json:"expected_harvest_date,omitempty"`
	IrrigationType      *string    `json:"irrigation_type,omitempty"`
	Status              *string    `json:"status,omitempty"`
}

func (r *UpdateField) Validate() *ValidationError {
	if r.Name != nil && *r.Name == "" {
		err := NewFieldValidationError("name", "must not be empty")
		return &err
	}
	if r.Area != nil && *r.Area <= 0 {
		err := NewFieldValidationError("area", "must be a positive area in square meters")
		return &err
	}
	if r.IrrigationType != nil {
		if err := validateEnum("irrigation_type", *r.IrrigationType, IrrigationTypes); err != nil {
			return err
		}
	}
	if r.Status != nil {
		if err := validateEnum("status", *r.Status, FieldStatuses); err != nil {
			return err
		}
	}
	return nil
}
