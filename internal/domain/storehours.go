package domain

// StoreHours is the opening window for one day of the week. Times are
// "HH:MM:SS" and are nil on closed days.
type StoreHours struct {
	DayOfWeek int     `json:"day_of_week" dynamodbav:"day_of_week" validate:"gte=0,lte=6"` // 0 is Sunday
	DayName   string  `json:"day_name" dynamodbav:"day_name" validate:"required"`
	IsOpen    bool    `json:"is_open" dynamodbav:"is_open"`
	OpenTime  *string `json:"open_time" dynamodbav:"open_time" validate:"omitempty,clock"`
	CloseTime *string `json:"close_time" dynamodbav:"close_time" validate:"omitempty,clock"`
}

type UpdateStoreHoursRequest struct {
	Hours []StoreHours `json:"hours" validate:"required,dive"`
}

// DefaultStoreHours is served until an admin saves a schedule: closed on
// Sunday, 11:00 to 15:00 the rest of the week.
func DefaultStoreHours() []StoreHours {
	names := [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	hours := make([]StoreHours, 0, len(names))
	for day, name := range names {
		h := StoreHours{DayOfWeek: day, DayName: name}
		if day != 0 {
			opens, closes := "11:00:00", "15:00:00"
			h.IsOpen, h.OpenTime, h.CloseTime = true, &opens, &closes
		}
		hours = append(hours, h)
	}
	return hours
}
