package models

import (
	"time"
)

// Base is embedded in every persisted entity. IDs are numeric and
// assigned by the store on insert.
type Base struct {
	ID        uint      `gorm:"primarykey" json:"id" example:"42"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func oneOf(value string, allowed []string) bool {
	for _, v := range allowed {
		if value == v {
			return true
		}
	}
	return false
}

// validateEnum returns a ValidationError when value is outside the
// closed set for field. Empty values are accepted; required fields are
// checked separately so the error distinguishes "missing" from "invalid".
func validateEnum(field, value string, allowed []string) *ValidationError {
	if value == "" || oneOf(value, allowed) {
		return nil
	}
	err := NewFieldValidationError(field, "value not in "+setString(allowed))
	return &err
}

func setString(allowed []string) string {
	out := "["
	for i, v := range allowed {
		if i > 0 {
			out += " "
		}
		out += v
	}
	return out + "]"
}
