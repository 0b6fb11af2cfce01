package client

import (
	"context"
	"fmt"
	"net/http"

	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

// RoomClient consumes the rooms service's public endpoints.
type RoomClient struct {
	http *httpClient
}

func NewRoomClient(opts Options, log *logger.Logger) *RoomClient {
	return &RoomClient{http: newHTTPClient("rooms", opts, log)}
}

// EnsureExists confirms the room id is known to the rooms service.
func (c *RoomClient) EnsureExists(ctx context.Context, roomID int64) error {
	resp, err := c.http.get(ctx, fmt.Sprintf("/api/v1/rooms/id/%d", roomID))
	if err != nil {
		return err
	}
	switch resp.status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return apperrors.NotFound("room")
	default:
		return apperrors.Unavailable()
	}
}

// Get fetches a room, for display enrichment.
func (c *RoomClient) Get(ctx context.Context, roomID int64) (*model.Room, error) {
	resp, err := c.http.get(ctx, fmt.Sprintf("/api/v1/rooms/id/%d", roomID))
	if err != nil {
		return nil, err
	}
	switch resp.status {
	case http.StatusOK:
		var room model.Room
		if err := resp.decode(&room); err != nil {
			return nil, apperrors.Unavailable()
		}
		return &room, nil
	case http.StatusNotFound:
		return nil, apperrors.NotFound("room")
	default:
		return nil, apperrors.Unavailable()
	}
}
