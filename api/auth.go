package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
	"github.com/jrsteele09/tripmate-client/sessions"
	"github.com/jrsteele09/tripmate-client/users"
)

// API route constants, relative to the base URL
const (
	RouteAuthLogin      = "/auth/login"
	RouteAuthLogout     = "/auth/logout"
	RouteAuthRefresh    = "/auth/refresh"
	RouteAuthChooseRole = "/auth/choose-role"
	RouteMe             = "/me/"
)

// TokenPair is the bearer pair issued by login, and optionally by refresh
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginRequest is the body of the local login call
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Refresh renews the server session. It is sent with cookies only and no
// body, outside the retry loop, so a failing refresh never recurses.
func (c *Client) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(RouteAuthRefresh), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", tmerrors.ErrRefreshFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", tmerrors.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %w", tmerrors.ErrRefreshFailed, errorFromResponse(resp))
	}

	// A JSON body with a new pair replaces the bearer credentials; otherwise
	// the renewed cookie is all there is.
	var pair TokenPair
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(body) > 0 && json.Unmarshal(body, &pair) == nil && pair.Access != "" {
		if err := c.session.Replace(sessions.NewCredentials(pair.Access, pair.Refresh)); err != nil {
			c.logger.Err(err).Msg("Refresh: failed to store renewed credentials")
		}
		return nil
	}
	c.session.MarkRefreshed()
	return nil
}

// Me fetches the current user and makes it the session's profile
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	var user users.User
	if err := c.GetJSON(ctx, RouteMe, &user); err != nil {
		return nil, err
	}
	if _, err := users.ParseRole(string(user.Role)); err != nil && !user.IsNewUser {
		return nil, fmt.Errorf("%w: %v", tmerrors.ErrBadResponse, err)
	}
	c.session.SetUser(&user)
	return &user, nil
}

// ChooseRole lets a new user pick general or provider. The server's verdict
// is in the response; a rejected choice is not an error.
func (c *Client) ChooseRole(ctx context.Context, role users.RoleType) (*users.ChooseRoleResponse, error) {
	if _, err := users.ParseRole(string(role)); err != nil {
		return nil, err
	}
	if !role.Selectable() {
		return nil, fmt.Errorf("%q: %w", role, tmerrors.ErrRoleNotSelectable)
	}

	var out users.ChooseRoleResponse
	if err := c.PostJSON(ctx, RouteAuthChooseRole, users.ChooseRoleRequest{Role: role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges a local email and password for a bearer pair, stores it in
// the session and loads the profile.
func (c *Client) Login(ctx context.Context, email, password string) (*users.User, error) {
	var pair TokenPair
	err := c.do(ctx, c.anon, http.MethodPost, RouteAuthLogin, LoginRequest{Email: email, Password: password}, &pair)
	if err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("%w: login response has no access credential", tmerrors.ErrBadResponse)
	}

	if err := c.session.Authenticate(sessions.NewCredentials(pair.Access, pair.Refresh), nil); err != nil {
		return nil, err
	}
	return c.Me(ctx)
}

// Logout tells the server and always clears the local session, even when
// the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	var body any
	if creds := c.session.Credentials(); creds != nil && creds.Refresh != "" {
		body = TokenPair{Refresh: creds.Refresh}
	}
	remoteErr := c.do(ctx, c.anon, http.MethodPost, RouteAuthLogout, body, nil)
	if remoteErr != nil {
		c.logger.Warn().Err(remoteErr).Msg("Logout: server call failed, clearing local session anyway")
	}
	return errors.Join(remoteErr, c.session.Clear())
}
