package model

import (
	"roomly/pkg/timeutil"
)

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID           int64          `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	FullName     *string        `json:"full_name"`
	Role         string         `json:"role"`
	PasswordHash string         `json:"-"`
	CreatedAt    timeutil.Naive `json:"created_at"`
}

type RegisterRequest struct {
	Username string  `json:"username" validate:"required"`
	Email    string  `json:"email" validate:"required"`
	Password string  `json:"password" validate:"required"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserSelfUpdate covers PATCH /users/me. Empty values are skipped.
type UserSelfUpdate struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// UserAdminUpdate covers the admin PATCH by username, which may also
// reassign the role.
type UserAdminUpdate struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// BookingSummary is one row of a user's booking history, with the room
// resolved to its name. RoomName is nil when the room has since been
// deleted; the booking itself survives.
type BookingSummary struct {
	ID        int64          `json:"id"`
	RoomName  *string        `json:"room_name"`
	StartTime timeutil.Naive `json:"start_time"`
	EndTime   timeutil.Naive `json:"end_time"`
	Status    string         `json:"status"`
}
