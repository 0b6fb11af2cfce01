package client

import (
	"context"
)

// Directory bundles the user and room clients behind the two read-only
// views the booking lifecycle needs: existence validation before a
// mutation, and name resolution for display enrichment.
type Directory struct {
	Users *UserClient
	Rooms *RoomClient
}

func (d *Directory) EnsureUserExists(ctx context.Context, userID int64) error {
	return d.Users.EnsureExists(ctx, userID)
}

func (d *Directory) EnsureRoomExists(ctx context.Context, roomID int64) error {
	return d.Rooms.EnsureExists(ctx, roomID)
}

func (d *Directory) Username(ctx context.Context, userID int64) (string, error) {
	basic, err := d.Users.Basic(ctx, userID)
	if err != nil {
		return "", err
	}
	return basic.Username, nil
}

func (d *Directory) RoomName(ctx context.Context, roomID int64) (string, error) {
	room, err := d.Rooms.Get(ctx, roomID)
	if err != nil {
		return "", err
	}
	return room.Name, nil
}
