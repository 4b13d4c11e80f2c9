package models

import (
	"time"
)

var (
	RecommendationTypes = []string{
		"irrigation", "fertilization", "pest_control", "planting", "harvesting", "general",
	}
	RecommendationPriorities = []string{"low", "medium", "high"}
	RecommendationStatuses   = []string{"pending", "accepted", "rejected", "completed"}
)

// Recommendation is produced by an external advisory engine and acted
// on by the user; only the status transitions after creation.
type Recommendation struct {
	Base
	UserID             uint       `gorm:"index;not null" json:"user_id" example:"1"`
	FarmID             *uint      `json:"farm_id,omitempty"`
	FieldID            *uint      `json:"field_id,omitempty"`
	RecommendationType string     `gorm:"size:32;not null" json:"recommendation_type" example:"irrigation"`
	Title              string     `gorm:"size:255;not null" json:"title"`
	Description        string     `gorm:"not null" json:"description"`
	Priority           string     `gorm:"size:16;default:medium" json:"priority" example:"medium"`
	Status             string     `gorm:"size:16;default:pending" json:"status" example:"pending"`
	Confidence         *int       `json:"confidence,omitempty" example:"82"` // 0-100
	ValidUntil         *time.Time `json:"valid_until,omitempty"`
	AppliedAt          *time.Time `json:"applied_at,omitempty"`
}

// AddRecommendation is the payload for recording a recommendation
type AddRecommendation struct {
	FarmID             *uint      `json:"farm_id,omitempty"`
	FieldID            *uint      `json:"field_id,omitempty"`
	RecommendationType string     `json:"recommendation_type"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Priority           string     `json:"priority,omitempty"`
	Confidence         *int       `json:"confidence,omitempty"`
	ValidUntil         *time.Time `json:"valid_until,omitempty"`
}

func (r *AddRecommendation) Validate() *ValidationError {
	if r.RecommendationType == "" {
		err := NewFieldNotPresentError("recommendation_type")
		return &err
	}
	if !oneOf(r.RecommendationType, RecommendationTypes) {
		err := NewFieldValidationError("recommendation_type", "value not in "+setString(RecommendationTypes))
		return &err
	}
	if r.Title == "" {
		err := NewFieldNotPresentError("title")
		return &err
	}
	if r.Description == "" {
		err := NewFieldNotPresentError("description")
		return &err
	}
	if r.Confidence != nil && (*r.Confidence < 0 || *r.Confidence > 100) {
		err := NewFieldValidationError("confidence", "must be between 0 and 100")
		return &err
	}
	return validateEnum("priority", r.Priority, RecommendationPriorities)
}

// UpdateRecommendationStatus is the payload for a status transition
type UpdateRecommendationStatus struct {
	Status string `json:"status" example:"accepted"`
}

func (r *UpdateRecommendationStatus) Validate() *ValidationError {
	if r.Status == "" {
		err := NewFieldNotPresentError("status")
		return &err
	}
	if !oneOf(r.Status, RecommendationStatuses) {
		err := NewFieldValidationError("status", "value not in "+setString(RecommendationStatuses))
		return &err
	}
	return nil
}
