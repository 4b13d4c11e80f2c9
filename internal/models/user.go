package models

import (
	"time"
)

const (
	RoleUser         = "user"
	RoleAdmin        = "admin"
	RoleFarmerSmall  = "farmer_small"
	RoleFarmerMedium = "farmer_medium"
	RoleEnterprise   = "enterprise"
	RoleGovernment   = "government"
)

var UserRoles = []string{
	RoleUser, RoleAdmin, RoleFarmerSmall, RoleFarmerMedium, RoleEnterprise, RoleGovernment,
}

var SubscriptionTiers = []string{"free", "pro", "enterprise"}

// User is the root of the ownership chain. The identity id comes from
// the identity provider, so we have no control over its format.
type User struct {
	Base
	IdentityID       string    `gorm:"uniqueIndex;size:64" json:"identity_id" example:"dev-user"`
	Name             string    `json:"name" example:"Dev User"`
	Email            string    `gorm:"size:320" json:"email" example:"dev@example.com"`
	LoginMethod      string    `gorm:"size:64" json:"login_method,omitempty"`
	Role             string    `gorm:"size:32;default:user" json:"role" example:"user"`
	Phone            string    `gorm:"size:20" json:"phone,omitempty"`
	Country          string    `gorm:"size:100" json:"country,omitempty"`
	Region           string    `gorm:"size:100" json:"region,omitempty"`
	Language         string    `gorm:"size:10;default:ar" json:"language"`
	SubscriptionTier string    `gorm:"size:16;default:free" json:"subscription_tier" example:"free"`
	LastSignedIn     time.Time `json:"last_signed_in"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UpdateUserRole is the payload for changing a user's role. Only admins
// may apply it.
type UpdateUserRole struct {
	Role string `json:"role" example:"farmer_small"`
}

func (r *UpdateUserRole) Validate() *ValidationError {
	if r.Role == "" {
		err := NewFieldNotPresentError("role")
		return &err
	}
	return validateEnum("role", r.Role, UserRoles)
}
