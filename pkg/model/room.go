package model

type Room struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Capacity  int64   `json:"capacity"`
	Equipment *string `json:"equipment"`
	Location  *string `json:"location"`
	IsActive  bool    `json:"is_active"`
}

// RoomCreate uses a pointer for capacity so that a missing field and an
// explicit zero produce different validation messages.
type RoomCreate struct {
	Name      string  `json:"name" validate:"required"`
	Capacity  *int64  `json:"capacity" validate:"required"`
	Equipment *string `json:"equipment"`
	Location  *string `json:"location"`
}

type RoomUpdate struct {
	Name      *string `json:"name"`
	Capacity  *int64  `json:"capacity"`
	Equipment *string `json:"equipment"`
	Location  *string `json:"location"`
	IsActive  *bool   `json:"is_active"`
}

func (u *RoomUpdate) Empty() bool {
	return u.Name == nil && u.Capacity == nil && u.Equipment == nil &&
		u.Location == nil && u.IsActive == nil
}

// RoomFilter narrows the public availability listing. Zero values mean
// "no constraint"; Equipment holds comma-separated tokens matched as
// substrings.
type RoomFilter struct {
	MinCapacity int64
	Location    string
	Equipment   string
}
