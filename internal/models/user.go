package models

import (
	"time"
)

// UserStatus classifies a staff member for meal accounting.
type UserStatus string

const (
	StatusMoniteur     UserStatus = "Moniteur"
	StatusBenevole     UserStatus = "Bénévole"
	StatusAideMoniteur UserStatus = "Aide Moniteur"
	StatusBar          UserStatus = "Bar"
)

// ValidStatuses lists every accepted user status value.
var ValidStatuses = []UserStatus{StatusMoniteur, StatusBenevole, StatusAideMoniteur, StatusBar}

// IsValidStatus reports whether s is one of the known status values.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if string(v) == s {
			return true
		}
	}
	return false
}

// User is a staff account that can book meals.
type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Username     string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Name         string     `gorm:"size:150;not null" json:"name"`
	Email        string     `gorm:"size:254" json:"email"`
	Status       UserStatus `gorm:"size:32;not null;default:'Moniteur'" json:"status"`
	ShortID      *string    `gorm:"size:2;uniqueIndex" json:"short_id"`
	IsAdmin      bool       `gorm:"not null;default:false" json:"is_admin"`
	PasswordHash string     `gorm:"size:128" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsManager reports whether the user may access manager endpoints.
// Admins always qualify; otherwise the user's status must be one of
// the configured manager roles.
func (u *User) IsManager(managerRoles []string) bool {
	if u.IsAdmin {
		return true
	}
	for _, r := range managerRoles {
		if string(u.Status) == r {
			return true
		}
	}
	return false
}

// ShortIDValue returns the user's short code or "" when none is assigned.
func (u *User) ShortIDValue() string {
	if u.ShortID == nil {
		return ""
	}
	return *u.ShortID
}
