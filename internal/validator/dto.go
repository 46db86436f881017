package validator

// LoginRequest authenticates a user by username and password.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ToggleReservationRequest books or cancels the caller's own meal.
type ToggleReservationRequest struct {
	Date     string `json:"date" validate:"required,date_ymd"`
	Reserved bool   `json:"reserved"`
	Benevole bool   `json:"benevole"`
}

// UpdateOwnStatusRequest flips the volunteer flag on the caller's own
// reservation for a date.
type UpdateOwnStatusRequest struct {
	Date     string `json:"date" validate:"required,date_ymd"`
	Benevole bool   `json:"benevole"`
}

// CreateReservationRequest is the manager-side upsert of a reservation
// for any user.
type CreateReservationRequest struct {
	UserID   uint   `json:"user_id" validate:"required"`
	Date     string `json:"date" validate:"required,date_ymd"`
	Benevole bool   `json:"benevole"`
}

// UpdateReservationStatusRequest flips the volunteer flag on a
// reservation located by identifier.
type UpdateReservationStatusRequest struct {
	Benevole bool `json:"benevole"`
}

// SetExtrasRequest overwrites the extra meal counts for one date.
type SetExtrasRequest struct {
	Date   string         `json:"date" validate:"required,date_ymd"`
	Extras map[string]int `json:"extras" validate:"required"`
}

// UpdateSettingsRequest merges the provided keys over the stored
// settings document.
type UpdateSettingsRequest struct {
	DeadlineTime *string `json:"deadline_time" validate:"omitempty,deadline_time"`
}

// AddUserRequest creates a user account.
type AddUserRequest struct {
	Username string `json:"username" validate:"required,min=1,max=150"`
	Name     string `json:"name" validate:"required,min=1,max=150"`
	Email    string `json:"email" validate:"omitempty,email"`
	Status   string `json:"status" validate:"required,user_status"`
	Password string `json:"password" validate:"required,min=8"`
	IsAdmin  bool   `json:"is_admin"`
}

// UpdateUserRequest modifies a user account. Nil fields are left
// untouched.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=150"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=150"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Status   *string `json:"status" validate:"omitempty,user_status"`
	IsAdmin  *bool   `json:"is_admin"`
}

// UpdateProfileRequest lets a user edit their own account details.
type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=150"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=150"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// ChangePasswordRequest rotates the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}
