package model

import (
	"roomly/pkg/timeutil"
)

const (
	BookingActive   = "active"
	BookingCanceled = "canceled"

	// BookingCompleted is written by operators, never by these services.
	// The state gate and conflict detector still honor it.
	BookingCompleted = "completed"
)

type Booking struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	RoomID    int64          `json:"room_id"`
	StartTime timeutil.Naive `json:"start_time"`
	EndTime   timeutil.Naive `json:"end_time"`
	Status    string         `json:"status"`
	CreatedAt timeutil.Naive `json:"-"`
	UpdatedAt timeutil.Naive `json:"-"`
}

func (b *Booking) Window() timeutil.Window {
	return timeutil.Window{Start: b.StartTime, End: b.EndTime}
}

// BookingWithNames is a booking enriched with owner and room names resolved
// from the sibling services. Either name is null when the lookup failed.
type BookingWithNames struct {
	Booking
	Username *string `json:"username"`
	RoomName *string `json:"room_name"`
}

// BookingCreate carries raw timestamp strings; parsing and normalization
// happen in the validator so malformed input maps to the right error.
type BookingCreate struct {
	UserID    int64  `json:"user_id" validate:"required"`
	RoomID    int64  `json:"room_id" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// BookingUpdate fields use the zero value as "not supplied".
type BookingUpdate struct {
	RoomID    int64  `json:"room_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Force     bool   `json:"force"`
}

func (u *BookingUpdate) Empty() bool {
	return u.RoomID == 0 && u.StartTime == "" && u.EndTime == ""
}
