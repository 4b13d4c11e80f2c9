package models

// DashboardOverview is the aggregated read-only summary for the
// current user. It is computed from three independent queries and
// tolerates partial data: a user with no farms gets zero counts and an
// empty farm list, not an error.
type DashboardOverview struct {
	TotalFarms             int    `json:"total_farms" example:"2"`
	TotalArea              int    `json:"total_area" example:"25000"`
	UnreadAlerts           int    `json:"unread_alerts" example:"3"`
	PendingRecommendations int    `json:"pending_recommendations" example:"1"`
	Farms                  []Farm `json:"farms"`
}
