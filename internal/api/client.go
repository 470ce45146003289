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

	"github.com/rs/zerolog"

	"dchat/client/internal/models"
)

var (
	// ErrAuthMissing: the call needs a credential and none is stored.
	ErrAuthMissing = errors.New("auth token missing")
	// ErrRequestFailed covers transport errors and non-OK API statuses.
	// Callers map it to local UI state (empty list, failed send), it is
	// never propagated to the user as a crash.
	ErrRequestFailed = errors.New("request failed")
)

// TokenSource supplies the bearer credential. *session.Store satisfies it.
type TokenSource interface {
	Token() string
}

// Client is the typed REST client for the chat backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

// NewClient wires a client against baseURL (including the /api prefix).
func NewClient(baseURL string, tokens TokenSource, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		log:     log,
	}
}

// bearer returns the Authorization header value or ErrAuthMissing.
func (c *Client) bearer() (string, error) {
	token := c.tokens.Token()
	if token == "" {
		return "", ErrAuthMissing
	}
	return "Bearer " + token, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return c.do(req, true, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, authed bool, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, authed, out)
}

func (c *Client) postMultipart(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := newPostRequest(ctx, c.baseURL+path, contentType, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return c.do(req, true, out)
}

func newPostRequest(ctx context.Context, url, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return req, nil
}

// do executes the request, unwraps the backend envelope and decodes its
// data payload into out (when out is non-nil).
func (c *Client) do(req *http.Request, authed bool, out any) error {
	if authed {
		header, err := c.bearer()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Debug().Int("code", resp.StatusCode).Str("url", req.URL.Path).Msg("api request rejected")
		return fmt.Errorf("%w: http %d", ErrRequestFailed, resp.StatusCode)
	}

	var env models.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode envelope: %v", ErrRequestFailed, err)
	}
	if env.Status != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrRequestFailed, env.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %v", ErrRequestFailed, err)
	}
	return nil
}
