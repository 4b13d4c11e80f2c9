package models

var (
	FarmTypes    = []string{"crop", "livestock", "mixed", "greenhouse", "organic"}
	FarmStatuses = []string{"active", "inactive", "maintenance"}
)

// Farm is the tenant boundary: every descendant entity is authorized
// through the owning farm.
type Farm struct {
	Base
	OwnerID     uint   `gorm:"index;not null" json:"owner_id" example:"1"`
	Name        string `gorm:"size:255;not null" json:"name" example:"North Valley"`
	Description string `json:"description,omitempty"`
	TotalArea   int    `gorm:"not null" json:"total_area" example:"10000"` // square meters
	Location    string `json:"location,omitempty"`                        // lat/lng JSON
	Address     string `json:"address,omitempty"`
	Country     string `gorm:"size:100" json:"country,omitempty"`
	Region      string `gorm:"size:100" json:"region,omitempty"`
	FarmType    string `gorm:"size:32;default:crop" json:"farm_type" example:"crop"`
	Status      string `gorm:"size:32;default:active" json:"status" example:"active"`
}

// AddFarm is the payload for creating a farm
type AddFarm struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TotalArea   int    `json:"total_area"`
	Location    string `json:"location,omitempty"`
	Address     string `json:"address,omitempty"`
	Country     string `json:"country,omitempty"`
	Region      string `json:"region,omitempty"`
	FarmType    string `json:"farm_type,omitempty"`
}

func (r *AddFarm) Validate() *ValidationError {
	if r.Name == "" {
		err := NewFieldNotPresentError("name")
		return &err
	}
	if r.TotalArea <= 0 {
		err := NewFieldValidationError("total_area", "must be a positive area in square meters")
		return &err
	}
	return validateEnum("farm_type", r.FarmType, FarmTypes)
}

// UpdateFarm is the payload for patching a farm, all fields optional
type UpdateFarm struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	TotalArea   *int    `json:"total_area,omitempty"`
	Location    *string `json:"location,omitempty"`
	Address     *string `json:"address,omitempty"`
	FarmType    *string `json:"farm_type,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (r *UpdateFarm) Validate() *ValidationError {
	if r.Name != nil && *r.Name == "" {
		err := NewFieldValidationError("name", "must not be empty")
		return &err
	}
	if r.TotalArea != nil && *r.TotalArea <= 0 {
		err := NewFieldValidationError("total_area", "must be a positive area in square meters")
		return &err
	}
	if r.FarmType != nil {
		if err := validateEnum("farm_type", *r.FarmType, FarmTypes); err != nil {
			return err
		}
	}
	if r.Status != nil {
		if err := validateEnum("status", *r.Status, FarmStatuses); err != nil {
			return err
		}
	}
	return nil
}
