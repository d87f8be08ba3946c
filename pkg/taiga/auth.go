package taiga

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Login authenticates with the configured username and password (Taiga
// "normal" login) and stores the issued auth and refresh tokens.
func (c *Client) Login(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return errors.New("taiga: login requires credentials")
	}
	return c.authenticate(ctx, "/auth", map[string]any{
		"type":     "normal",
		"username": c.username,
		"password": c.password,
	})
}

// Refresh exchanges the stored refresh token for a fresh auth token.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()
	if refresh == "" {
		return errors.New("taiga: no refresh token held")
	}
	return c.authenticate(ctx, "/auth/refresh", map[string]any{
		"refresh": refresh,
	})
}

// EnsureAuthenticated logs in when no token is held yet. Called once at
// startup so the first tool call does not pay the login round-trip.
func (c *Client) EnsureAuthenticated(ctx context.Context) error {
	if c.token() != "" {
		return nil
	}
	return c.Login(ctx)
}

// authenticate posts to a Taiga auth endpoint and stores the tokens from
// the answer. Auth endpoints never get the re-auth pass: a 401 here is
// final.
func (c *Client) authenticate(ctx context.Context, path string, body map[string]any) error {
	raw, err := c.doNoReauth(ctx, path, body)
	if err != nil {
		return err
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return errors.New("taiga: malformed auth response")
	}
	authToken, _ := obj["auth_token"].(string)
	if authToken == "" {
		return errors.New("taiga: auth response missing auth_token")
	}
	refreshToken, _ := obj["refresh"].(string)

	c.mu.Lock()
	c.authToken = authToken
	if refreshToken != "" {
		c.refreshToken = refreshToken
	}
	c.mu.Unlock()

	c.logger.Info("authenticated against taiga", zap.String("endpoint", path))
	return nil
}

func (c *Client) doNoReauth(ctx context.Context, path string, body map[string]any) (any, error) {
	payload, err := jsonMarshal(body)
	if err != nil {
		return nil, err
	}
	status, respBody, err := c.execute(ctx, http.MethodPost, c.baseURL+apiPrefix+path, payload, false)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, newAPIError(status, respBody)
	}
	return jsonDecode(respBody)
}

// reauthenticate restores a valid token after a 401: refresh when a
// refresh token is held, full login otherwise.
func (c *Client) reauthenticate(ctx context.Context) error {
	c.mu.Lock()
	hasRefresh := c.refreshToken != ""
	c.mu.Unlock()

	if hasRefresh {
		if err := c.Refresh(ctx); err == nil {
			return nil
		}
		// Fall back to a full login when the refresh token expired too.
	}
	if c.username != "" && c.password != "" {
		return c.Login(ctx)
	}
	return errors.New("taiga: no way to re-authenticate")
}

func (c *Client) canReauthenticate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshToken != "" || (c.username != "" && c.password != "")
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authToken
}
