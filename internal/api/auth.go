package api

import (
	"context"
	"net/http"

	"github.com/baderboshnak/golden-shen/internal/domain"
)

// Login authenticates with the backend. It does not persist anything;
// storing the returned session is the credential store's job.
func (c *Client) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	body := map[string]string{"username": username, "password": password}
	var payload struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, false, &payload); err != nil {
		return "", domain.User{}, err
	}
	return payload.Token, payload.User, nil
}

func (c *Client) Profile(ctx context.Context) (domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, true, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	return c.do(ctx, http.MethodPut, "/auth/me/password", body, true, nil)
}
