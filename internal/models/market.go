package models

import (
	"time"
)

// MarketPrice is a public price observation for a crop in a region
type MarketPrice struct {
	Base
	CropType string    `gorm:"index;size:100;not null" json:"crop_type" example:"durum wheat"`
	Region   string    `gorm:"size:100" json:"region,omitempty"`
	Price    int       `gorm:"not null" json:"price" example:"235"` // cents per kg
	Currency string    `gorm:"size:10;default:USD" json:"currency"`
	Source   string    `gorm:"size:100" json:"source,omitempty"`
	Date     time.Time `gorm:"index;not null" json:"date"`
}

// AddMarketPrice is the payload for recording a price observation.
// Price writes are admin only.
type AddMarketPrice struct {
	CropType string     `json:"crop_type"`
	Region   string     `json:"region,omitempty"`
	Price    int        `json:"price"`
	Currency string     `json:"currency,omitempty"`
	Source   string     `json:"source,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
}

func (r *AddMarketPrice) Validate() *ValidationError {
	if r.CropType == "" {
		err := NewFieldNotPresentError("crop_type")
		return &err
	}
	if r.Price <= 0 {
		err := NewFieldValidationError("price", "must be a positive amount in cents")
		return &err
	}
	return nil
}
