package model

import "time"

const (
	StatusYes   = "Yes"
	StatusNo    = "No"
	StatusMaybe = "Maybe"
)

type Event struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  *int64    `db:"capacity" json:"capacity"` // nil means unlimited
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Rsvp struct {
	ID        int64     `db:"id" json:"id"`
	EventID   int64     `db:"event_id" json:"eventId"`
	UserID    int64     `db:"user_id" json:"userId"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type StatusCounts struct {
	Yes   int64 `json:"yes"`
	No    int64 `json:"no"`
	Maybe int64 `json:"maybe"`
}
