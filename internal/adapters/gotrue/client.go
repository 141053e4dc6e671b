// Package gotrue implements the identity provider port against a
// GoTrue-compatible auth endpoint such as Supabase's /auth/v1.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

// Client is a ports.IdentityProvider over HTTP.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *logger.Logger
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL, anonKey string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.WithComponent("gotrue"),
	}
}

type sessionResponse struct {
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	ExpiresIn   int                 `json:"expires_in"`
	User        *ports.IdentityUser `json:"user"`
}

// apiError covers the error shapes GoTrue has used across versions.
type apiError struct {
	Status           int    `json:"-"`
	Code             any    `json:"code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorName        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *apiError) Error() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	case e.ErrorName != "":
		return e.ErrorName
	}
	return fmt.Sprintf("unexpected status %d", e.Status)
}

func (c *Client) SignUp(ctx context.Context, email, password string, profile map[string]any) (*ports.Identity, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     profile,
	}

	var out sessionResponse
	if err := c.call(ctx, http.MethodPost, "/signup", "", body, &out); err != nil {
		return nil, &entities.AuthError{Op: "sign_up", Err: err}
	}
	// With email confirmation enabled GoTrue answers with the bare user.
	if out.AccessToken == "" || out.User == nil {
		return nil, &entities.AuthError{Op: "sign_up", Err: errors.New("registration failed: no session issued")}
	}

	c.logger.Infow("Identity signed up", "email", email)
	return &ports.Identity{User: *out.User, AccessToken: out.AccessToken}, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*ports.Identity, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}

	var out sessionResponse
	if err := c.call(ctx, http.MethodPost, "/token?grant_type=password", "", body, &out); err != nil {
		return nil, &entities.AuthError{Op: "sign_in", Err: err}
	}
	if out.AccessToken == "" || out.User == nil {
		return nil, &entities.AuthError{Op: "sign_in", Err: errors.New("login failed: no session issued")}
	}

	return &ports.Identity{User: *out.User, AccessToken: out.AccessToken}, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if err := c.call(ctx, http.MethodPost, "/logout", accessToken, nil, nil); err != nil {
		return &entities.AuthError{Op: "sign_out", Err: err}
	}
	return nil
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*ports.IdentityUser, error) {
	var out ports.IdentityUser
	if err := c.call(ctx, http.MethodGet, "/user", accessToken, nil, &out); err != nil {
		return nil, &entities.AuthError{Op: "get_user", Err: err}
	}
	if out.ID == "" {
		return nil, &entities.AuthError{Op: "get_user", Err: entities.ErrUnauthorized}
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, method, path, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/auth/v1"+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	bearer := c.anonKey
	if token != "" {
		bearer = token
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &apiError{}
		_ = json.Unmarshal(raw, apiErr)
		apiErr.Status = resp.StatusCode
		c.logger.Debugw("Identity call rejected", "path", path, "status", resp.StatusCode, "error", apiErr.Error())
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
