package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

type AuthEventType string

const (
	SignedIn       AuthEventType = "signed_in"
	SignedOut      AuthEventType = "signed_out"
	SessionExpired AuthEventType = "session_expired"
)

type AuthEvent struct {
	Type    AuthEventType
	Session model.Session
}

// OnAuthChange registers fn for session transitions. The returned func
// unregisters it.
func (c *Client) OnAuthChange(fn func(AuthEvent)) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) emit(ev AuthEvent) {
	c.listenersMu.Lock()
	fns := make([]func(AuthEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Client) SignUp(ctx context.Context, creds model.Credentials) (model.Session, error) {
	return c.authenticate(ctx, "/auth/signup", creds)
}

func (c *Client) SignIn(ctx context.Context, creds model.Credentials) (model.Session, error) {
	return c.authenticate(ctx, "/auth/signin", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds model.Credentials) (model.Session, error) {
	data, err := c.do(ctx, http.MethodPost, path, creds)
	if err != nil {
		return model.Session{}, err
	}

	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return model.Session{}, fmt.Errorf("decode session: %w", err)
	}
	c.setSession(s)

	c.log.Infow("signed in", "user", s.UserID, "expires_at", s.ExpiresAt)
	c.emit(AuthEvent{Type: SignedIn, Session: s})
	return s, nil
}

// Resume adopts a session obtained earlier, after checking it with the API.
func (c *Client) Resume(ctx context.Context, s model.Session) (model.Session, error) {
	if !s.Authenticated(c.now()) {
		return model.Session{}, fmt.Errorf("resume session: %w", apperrors.ErrNoSession)
	}
	c.setSession(s)

	data, err := c.do(ctx, http.MethodGet, "/auth/session", nil)
	if err != nil {
		c.clear(s.AccessToken)
		return model.Session{}, err
	}
	var current model.Session
	if err := json.Unmarshal(data, &current); err != nil {
		c.clear(s.AccessToken)
		return model.Session{}, fmt.Errorf("decode session: %w", err)
	}
	current.AccessToken = s.AccessToken
	c.setSession(current)

	c.emit(AuthEvent{Type: SignedIn, Session: current})
	return current, nil
}

// SignOut revokes the session on the API and forgets it locally. The local
// session is cleared even when the API call fails.
func (c *Client) SignOut(ctx context.Context) error {
	token := c.token()
	if token == "" {
		return nil
	}

	_, err := c.do(ctx, http.MethodPost, "/auth/signout", nil)
	if c.clear(token) {
		c.emit(AuthEvent{Type: SignedOut})
	}
	if err != nil && !IsUnauthorized(err) {
		return err
	}
	return nil
}

// Session returns the current session, which is the zero value when signed
// out.
func (c *Client) Session() model.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) setSession(s model.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expiry != nil {
		c.expiry.Stop()
		c.expiry = nil
	}
	c.session = s
	if s.ExpiresAt.IsZero() {
		return
	}

	token := s.AccessToken
	c.expiry = time.AfterFunc(s.ExpiresAt.Sub(c.now()), func() { c.expire(token) })
}

// clear drops the session if it still carries token.
func (c *Client) clear(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.AccessToken != token {
		return false
	}
	if c.expiry != nil {
		c.expiry.Stop()
		c.expiry = nil
	}
	c.session = model.Session{}
	return true
}

func (c *Client) expire(token string) {
	if !c.clear(token) {
		return
	}
	c.log.Warn("session expired")
	c.emit(AuthEvent{Type: SessionExpired})
}
