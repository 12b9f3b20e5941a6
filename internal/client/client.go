// Package client talks to the task manager API. A Client implements the
// store's Remote for the signed-in session and reports session changes to
// subscribers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
	log     *zap.SugaredLogger
	now     func() time.Time

	mu      sync.RWMutex
	session model.Session
	expiry  *time.Timer

	listenersMu  sync.Mutex
	listeners    map[int]func(AuthEvent)
	nextListener int
}

type Option func(*Client)

// WithHTTPClient replaces the client used for request/response calls. The
// change stream always uses a client without a timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: defaultTimeout},
		stream:    &http.Client{},
		log:       zap.NewNop().Sugar(),
		now:       time.Now,
		listeners: make(map[int]func(AuthEvent)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// do sends a JSON request and returns the response body of a 2xx reply.
// Error replies are rebuilt into the matching apperrors value.
func (c *Client) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return data, nil
	}

	apiErr := decodeError(res.StatusCode, data)
	// A rejected credential check says nothing about the current session.
	credentialCheck := path == "/auth/signin" || path == "/auth/signup"
	if res.StatusCode == http.StatusUnauthorized && token != "" && !credentialCheck {
		c.expire(token)
	}
	return nil, apiErr
}

func decodeError(status int, data []byte) error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return apperrors.FromCode(strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_"), "", status)
	}
	if len(body.Fields) > 0 {
		return apperrors.NewValidationError(body.Fields)
	}
	return apperrors.FromCode(body.Error, body.Message, status)
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.AccessToken
}

func (c *Client) requireSession() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.session.Authenticated(c.now()) {
		return apperrors.ErrNoSession
	}
	return nil
}

// IsUnauthorized reports whether err means the API rejected the session.
func IsUnauthorized(err error) bool {
	return errors.Is(err, apperrors.ErrUnauthorized) || errors.Is(err, apperrors.ErrNoSession)
}
