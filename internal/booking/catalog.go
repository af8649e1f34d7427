package booking

import "time"

var rooms = []Room{
	{
		ID:          1,
		Name:        "Room 101",
		Description: "Room with sea view",
		Price:       100,
		ImageURL:    "https://images.mirai.com/INFOROOMS/100377926/GEe1lJbqZ4nh3FPX9vKs/GEe1lJbqZ4nh3FPX9vKs_original.jpg",
	},
	{
		ID:          2,
		Name:        "Room 102",
		Description: "Room with garden view",
		Price:       80,
		ImageURL:    "https://images.mirai.com/INFOROOMS/100377926/iMoSTVry2RUN8ztTXive/iMoSTVry2RUN8ztTXive_original.jpg",
	},
	{
		ID:          3,
		Name:        "Room 103",
		Description: "Standard room",
		Price:       60,
		ImageURL:    "https://images.mirai.com/INFOROOMS/100377926/v9txb3gzIkeHPJqNCYWG/v9txb3gzIkeHPJqNCYWG_original.jpg",
	},
}

// Rooms returns a copy of the catalog; callers may not mutate it.
func Rooms() []Room {
	out := make([]Room, len(rooms))
	copy(out, rooms)
	return out
}

func FindRoom(id int) (Room, bool) {
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// ImageFor returns the image of the room a reservation points at, or "".
func ImageFor(roomID int) string {
	if r, ok := FindRoom(roomID); ok {
		return r.ImageURL
	}
	return ""
}

// MinDate is the earliest date offered to the date picker. Advisory only.
func MinDate(now time.Time) string {
	return now.Format(DateLayout)
}
