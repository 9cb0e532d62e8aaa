// Package api is a typed client for the itemkeeper REST API.
//
// Two HTTP clients share one cookie jar. The auth client talks to /auth/*
// directly and is what refreshes tokens; the resource client wraps its
// transport in a ReauthTransport so an expired access token is refreshed
// and the request retried without the caller noticing.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/client/models"
	"github.com/dmitrijs2005/itemkeeper/internal/client/session"
	"github.com/dmitrijs2005/itemkeeper/internal/client/transport"
	"github.com/dmitrijs2005/itemkeeper/internal/logging"
)

type Client struct {
	baseURL   string
	store     *session.Store
	auth      *http.Client
	resources *http.Client
	logger    logging.Logger
}

// New builds a Client for baseURL. base may be nil for http.DefaultTransport.
func New(baseURL string, store *session.Store, jar http.CookieJar, base http.RoundTripper, timeout time.Duration, logger logging.Logger) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		logger:  logger.With("module", "api_client"),
	}
	c.auth = &http.Client{Transport: base, Jar: jar, Timeout: timeout}
	c.resources = &http.Client{
		Transport: transport.NewReauthTransport(base, store, c.Refresh, logger),
		Jar:       jar,
		Timeout:   timeout,
	}
	return c
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, c.auth, http.MethodPost, "/auth/register", body, nil)
}

// Login stores the access token; the refresh cookie lands in the jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, c.auth, http.MethodPost, "/auth/login", body, &out); err != nil {
		return err
	}
	c.store.SetAccessToken(out.AccessToken)
	return nil
}

// Refresh exchanges the jar's refresh cookie for a new access token. It does
// not touch the store; callers decide what a failure means.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, c.auth, http.MethodPost, "/auth/refresh", nil, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Logout revokes the refresh token on the server. The local session is
// cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.store.Clear()
	return c.do(ctx, c.auth, http.MethodPost, "/auth/logout", nil, nil)
}

// ForgotPassword returns the reset token, which the server hands back
// directly in place of sending an email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out struct {
		ResetToken string `json:"resetToken"`
	}
	if err := c.do(ctx, c.auth, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.ResetToken, nil
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	body := map[string]string{"resetToken": resetToken, "newPassword": newPassword}
	return c.do(ctx, c.auth, http.MethodPost, "/auth/reset-password", body, nil)
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, c.resources, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := c.do(ctx, c.resources, http.MethodGet, "/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateItem(ctx context.Context, name, description string) (*models.Item, error) {
	var it models.Item
	body := map[string]string{"name": name, "description": description}
	if err := c.do(ctx, c.resources, http.MethodPost, "/items", body, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (c *Client) GetItem(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	if err := c.do(ctx, c.resources, http.MethodGet, "/items/"+url.PathEscape(id), nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateItem changes only the non-empty fields.
func (c *Client) UpdateItem(ctx context.Context, id, name, description string) (*models.Item, error) {
	var it models.Item
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	if description != "" {
		body["description"] = description
	}
	if err := c.do(ctx, c.resources, http.MethodPut, "/items/"+url.PathEscape(id), body, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, c.resources, http.MethodDelete, "/items/"+url.PathEscape(id), nil, nil)
}

// do sends a JSON request and decodes a 2xx body into out when out is non-nil.
// Non-2xx responses become *Error, transport failures wrap ErrUnavailable.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var m messageResponse
		_ = json.Unmarshal(data, &m)
		c.logger.Debug(ctx, "request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return &Error{StatusCode: resp.StatusCode, Message: m.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
