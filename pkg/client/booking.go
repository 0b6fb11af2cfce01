package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/timeutil"
)

// BookingClient consumes the bookings service's public availability
// endpoints. The rooms service uses it for live status and windowed
// availability; it never reads the bookings table directly.
type BookingClient struct {
	http *httpClient
}

func NewBookingClient(opts Options, log *logger.Logger) *BookingClient {
	return &BookingClient{http: newHTTPClient("bookings", opts, log)}
}

// ActiveStatus reports "booked" or "available" for the room right now.
func (c *BookingClient) ActiveStatus(ctx context.Context, roomID int64) (string, error) {
	resp, err := c.http.get(ctx, fmt.Sprintf("/api/v1/bookings/room/%d/active-status", roomID))
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", apperrors.Unavailable()
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := resp.decode(&payload); err != nil {
		return "", apperrors.Unavailable()
	}
	return payload.Status, nil
}

// CheckAvailability reports whether the room is free for the window.
func (c *BookingClient) CheckAvailability(ctx context.Context, roomID int64, window timeutil.Window) (bool, error) {
	q := url.Values{}
	q.Set("room_id", fmt.Sprintf("%d", roomID))
	q.Set("start", window.Start.String())
	q.Set("end", window.End.String())

	resp, err := c.http.get(ctx, "/api/v1/bookings/check?"+q.Encode())
	if err != nil {
		return false, err
	}
	switch resp.status {
	case http.StatusOK:
		var payload struct {
			Available bool `json:"available"`
		}
		if err := resp.decode(&payload); err != nil {
			return false, apperrors.Unavailable()
		}
		return payload.Available, nil
	case http.StatusNotFound:
		return false, apperrors.NotFound("room")
	default:
		return false, apperrors.Unavailable()
	}
}
