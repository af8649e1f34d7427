package booking

// DateLayout is the format of Reservation.SelectedDate.
const DateLayout = "2006-01-02"

// TimestampLayout is how new ReservedAt values are written: UTC with
// milliseconds, the shape browsers produce with toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type Room struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
}

// Reservation is the persisted record. ID is the room id and is not unique:
// booking the same room twice yields two records with the same ID.
type Reservation struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	ReservedAt   string  `json:"reservedAt"` // ISO-8601, kept verbatim so any stored form loads
	SelectedDate string  `json:"selectedDate"`
	Ref          string  `json:"ref,omitempty"` // per-booking uuid; empty on legacy records
}
