package models

var WaterRequirements = []string{"low", "medium", "high"}

// Crop is a public catalog entry, not owned by any user
type Crop struct {
	Base
	Name              string `gorm:"size:255;not null" json:"name" example:"durum wheat"`
	ScientificName    string `gorm:"size:255" json:"scientific_name,omitempty"`
	Category          string `gorm:"size:100" json:"category,omitempty" example:"cereal"`
	GrowingSeasonDays *int   `json:"growing_season_days,omitempty" example:"120"`
	WaterRequirement  string `gorm:"size:16" json:"water_requirement,omitempty" example:"medium"`
	TemperatureMin    *int   `json:"temperature_min,omitempty"` // celsius
	TemperatureMax    *int   `json:"temperature_max,omitempty"`
	SoilTypePreferred string `gorm:"size:100" json:"soil_type_preferred,omitempty"`
	Description       string `json:"description,omitempty"`
}

// AddCrop is the payload for adding a catalog entry. Catalog writes are
// admin only.
type AddCrop struct {
	Name              string `json:"name"`
	ScientificName    string `json:"scientific_name,omitempty"`
	Category          string `json:"category,omitempty"`
	GrowingSeasonDays *int   `json:"growing_season_days,omitempty"`
	WaterRequirement  string `json:"water_requirement,omitempty"`
	TemperatureMin    *int   `json:"temperature_min,omitempty"`
	TemperatureMax    *int   `json:"temperature_max,omitempty"`
	SoilTypePreferred string `json:"soil_type_preferred,omitempty"`
	Description       string `json:"description,omitempty"`
}

func (r *AddCrop) Validate() *ValidationError {
	if r.Name == "" {
		err := NewFieldNotPresentError("name")
		return &err
	}
	if r.GrowingSeasonDays != nil && *r.GrowingSeasonDays <= 0 {
		err := NewFieldValidationError("growing_season_days", "must be positive")
		return &err
	}
	if r.TemperatureMin != nil && r.TemperatureMax != nil && *r.TemperatureMax < *r.TemperatureMin {
		err := NewFieldValidationError("temperature_max", "must not be below temperature_min")
		return &err
	}
	return validateEnum("water_requirement", r.WaterRequirement, WaterRequirements)
}
