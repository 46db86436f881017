package models

import (
	"time"

	"gorm.io/datatypes"
)

// Reservation is a single user's meal booking for one day. A user can
// hold at most one reservation per date.
type Reservation struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_reservations_user_date" json:"user_id"`
	User      User           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Date      datatypes.Date `gorm:"not null;uniqueIndex:idx_reservations_user_date" json:"-"`
	Benevole  bool           `gorm:"not null;default:false" json:"benevole"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// EffectiveStatus is the status the reservation counts under. A booking
// flagged as volunteer counts as Bénévole regardless of the user's own
// status.
func (r *Reservation) EffectiveStatus(user *User) UserStatus {
	if r.Benevole {
		return StatusBenevole
	}
	return user.Status
}

// DateString renders the reservation date as YYYY-MM-DD.
func (r *Reservation) DateString() string {
	return time.Time(r.Date).Format("2006-01-02")
}

// ExtraCategory labels a batch of extra meals not tied to a user account.
type ExtraCategory string

const (
	ExtraEDS      ExtraCategory = "EDS"
	ExtraBenevole ExtraCategory = "Bénévole"
	ExtraAutre    ExtraCategory = "Autre"
)

// ValidExtraCategories lists every accepted extra meal category.
var ValidExtraCategories = []ExtraCategory{ExtraEDS, ExtraBenevole, ExtraAutre}

// IsValidExtraCategory reports whether c is a known extra category.
func IsValidExtraCategory(c string) bool {
	for _, v := range ValidExtraCategories {
		if string(v) == c {
			return true
		}
	}
	return false
}

// ExtraReservation records additional meals booked for a date under a
// category. One row per (date, category) pair; setting again overwrites.
type ExtraReservation struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Date      datatypes.Date `gorm:"not null;uniqueIndex:idx_extras_date_category" json:"-"`
	Category  ExtraCategory  `gorm:"size:32;not null;uniqueIndex:idx_extras_date_category" json:"category"`
	Count     int            `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (ExtraReservation) TableName() string {
	return "extra_reservations"
}

// DateString renders the extra reservation date as YYYY-MM-DD.
func (e *ExtraReservation) DateString() string {
	return time.Time(e.Date).Format("2006-01-02")
}
