package models

import (
	"time"
)

var HarvestQualities = []string{"excellent", "good", "fair", "poor"}

// HarvestRecord is an append-only yield record for a field
type HarvestRecord struct {
	Base
	FieldID      uint      `gorm:"index;not null" json:"field_id" example:"3"`
	CropType     string    `gorm:"size:100" json:"crop_type,omitempty"`
	HarvestDate  time.Time `gorm:"index;not null" json:"harvest_date"`
	Quantity     *int      `json:"quantity,omitempty" example:"4200"` // kg
	Quality      string    `gorm:"size:16" json:"quality,omitempty" example:"good"`
	MarketPrice  *int      `json:"market_price,omitempty"`  // cents per kg
	TotalRevenue *int      `json:"total_revenue,omitempty"` // cents
	Notes        string    `json:"notes,omitempty"`
}

// AddHarvestRecord is the payload for logging a harvest
type AddHarvestRecord struct {
	FieldID      uint      `json:"field_id"`
	CropType     string    `json:"crop_type,omitempty"`
	HarvestDate  time.Time `json:"harvest_date"`
	Quantity     *int      `json:"quantity,omitempty"`
	Quality      string    `json:"quality,omitempty"`
	MarketPrice  *int      `json:"market_price,omitempty"`
	TotalRevenue *int      `json:"total_revenue,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

func (r *AddHarvestRecord) Validate() *ValidationError {
	if r.FieldID == 0 {
		err := NewFieldNotPresentError("field_id")
		return &err
	}
	if r.HarvestDate.IsZero() {
		err := NewFieldNotPresentError("harvest_date")
		return &err
	}
	if r.Quantity != nil && *r.Quantity < 0 {
		err := NewFieldValidationError("quantity", "must not be negative")
		return &err
	}
	return validateEnum("quality", r.Quality, HarvestQualities)
}
