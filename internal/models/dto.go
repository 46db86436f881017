package models

// SuccessResponse is the generic success envelope returned by mutating
// endpoints.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the failure envelope shared by all endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// UserPayload is the user representation exposed over the API.
type UserPayload struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	ShortID  string `json:"short_id"`
	IsAdmin  bool   `json:"is_admin"`
}

// ToPayload converts a stored user into its API representation.
func (u *User) ToPayload() UserPayload {
	return UserPayload{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Status:   string(u.Status),
		ShortID:  u.ShortIDValue(),
		IsAdmin:  u.IsAdmin,
	}
}

// UserDayEntry is one day in a user's own weekly view.
type UserDayEntry struct {
	Reserved bool `json:"reserved"`
	Benevole bool `json:"benevole"`
}

// WeekEntry is one reservation row in the manager's weekly view.
type WeekEntry struct {
	ReservationID uint   `json:"reservation_id"`
	UserID        uint   `json:"user_id"`
	ShortID       string `json:"short_id"`
	UserName      string `json:"user_name"`
	Status        string `json:"status"`
	UserStatus    string `json:"user_status"`
	Benevole      bool   `json:"benevole"`
}

// UserBreakdown is the per-user slice of the reservation statistics.
type UserBreakdown struct {
	ShortID  string `json:"short_id"`
	Total    int    `json:"total"`
	Voile    int    `json:"voile"`
	Bar      int    `json:"bar"`
	Benevole int    `json:"benevole"`
}

// ReservationStats is the aggregation result over a date range.
type ReservationStats struct {
	TotalMeals int                       `json:"total_meals"`
	ByStatus   map[string]int            `json:"by_status"`
	ByUser     map[string]*UserBreakdown `json:"by_user"`
	Extras     map[string]int            `json:"extras"`
}

// ExportRow is one line of the detailed reservation listing consumed by
// the CSV, PDF and XLSX renderers. Dates are rendered DD/MM/YYYY.
type ExportRow struct {
	ID       uint
	Date     string
	Name     string
	Status   string
	ShortID  string
	Benevole bool
}
