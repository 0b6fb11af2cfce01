package client

import (
	"context"
	"fmt"
	"net/http"

	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
)

// UserClient consumes the users service's public probe endpoints.
type UserClient struct {
	http *httpClient
}

func NewUserClient(opts Options, log *logger.Logger) *UserClient {
	return &UserClient{http: newHTTPClient("users", opts, log)}
}

// EnsureExists confirms the user id is known to the users service.
// Returns nil, a not-found error, or service_unavailable.
func (c *UserClient) EnsureExists(ctx context.Context, userID int64) error {
	resp, err := c.http.get(ctx, fmt.Sprintf("/api/v1/users/id/%d/status", userID))
	if err != nil {
		return err
	}
	switch resp.status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return apperrors.NotFound("user")
	default:
		return apperrors.Unavailable()
	}
}

// UserBasic is the minimal public projection of a user.
type UserBasic struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Basic fetches the public projection, for display enrichment.
func (c *UserClient) Basic(ctx context.Context, userID int64) (*UserBasic, error) {
	resp, err := c.http.get(ctx, fmt.Sprintf("/api/v1/users/id/%d/basic", userID))
	if err != nil {
		return nil, err
	}
	switch resp.status {
	case http.StatusOK:
		var basic UserBasic
		if err := resp.decode(&basic); err != nil {
			return nil, apperrors.Unavailable()
		}
		return &basic, nil
	case http.StatusNotFound:
		return nil, apperrors.NotFound("user")
	default:
		return nil, apperrors.Unavailable()
	}
}
