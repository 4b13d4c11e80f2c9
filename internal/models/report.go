package models

import (
	"time"
)

var ReportTypes = []string{"monthly", "seasonal", "annual", "custom", "government"}

// Report is a user-rooted generated document; immutable once created
type Report struct {
	Base
	UserID     uint       `gorm:"index;not null" json:"user_id" example:"1"`
	FarmID     *uint      `json:"farm_id,omitempty"`
	ReportType string     `gorm:"size:32;not null" json:"report_type" example:"monthly"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Content    string     `json:"content,omitempty"` // JSON report body
	FileUrl    string     `json:"file_url,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

// AddReport is the payload for generating a report
type AddReport struct {
	FarmID     *uint      `json:"farm_id,omitempty"`
	ReportType string     `json:"report_type"`
	Title      string     `json:"title"`
	Content    string     `json:"content,omitempty"`
	FileUrl    string     `json:"file_url,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

func (r *AddReport) Validate() *ValidationError {
	if r.ReportType == "" {
		err := NewFieldNotPresentError("report_type")
		return &err
	}
	if !oneOf(r.ReportType, ReportTypes) {
		err := NewFieldValidationError("report_type", "value not in "+setString(ReportTypes))
		return &err
	}
	if r.Title == "" {
		err := NewFieldNotPresentError("title")
		return &err
	}
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		err := NewFieldValidationError("end_date", "must not be before start_date")
		return &err
	}
	return nil
}
