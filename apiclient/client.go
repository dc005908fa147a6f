package apiclient

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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxResponseBytes = 8 << 20

// Doer is satisfied by *Client; domain packages depend on it so tests can
// substitute a fake.
type Doer interface {
	Do(ctx context.Context, req *Request, out any) error
}

// RefreshTokenSetter is implemented by sessions that can store a rotated
// refresh token.
type RefreshTokenSetter interface {
	SetRefreshToken(ctx context.Context, token string) error
}

type Config struct {
	BaseURL     string
	RefreshPath string
	Timeout     time.Duration
}

// Client issues backend requests for one session, attaching the bearer token
// and recovering once from an expired access token.
type Client struct {
	baseURL   string
	http      *http.Client
	session   Session
	refresher *Refresher
	metrics   *Metrics
	logger    zerolog.Logger
	onExpired func(ctx context.Context)
}

type Option func(*Client)

// WithHTTPClient replaces the default client (which carries Config.Timeout).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRefresher shares one Refresher between clients so concurrent refreshes
// of the same token are collapsed.
func WithRefresher(r *Refresher) Option {
	return func(c *Client) { c.refresher = r }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// OnSessionExpired registers a hook fired after an unrecoverable 401 has
// cleared the session.
func OnSessionExpired(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onExpired = fn }
}

func New(cfg Config, session Session, opts ...Option) *Client {
	if session == nil {
		session = noSession{}
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		session: session,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	if c.refresher == nil {
		c.refresher = NewRefresher(c.http, c.baseURL+cfg.RefreshPath, c.metrics)
	}
	return c
}

// WithSession returns a copy of c bound to session. Transport, refresher and
// metrics are shared.
func (c *Client) WithSession(session Session) *Client {
	if session == nil {
		session = noSession{}
	}
	cp := *c
	cp.session = session
	return &cp
}

func (c *Client) Session() Session {
	return c.session
}

// Do sends req and decodes a 2xx JSON body into out (when out is not nil).
//
// A 401 on a request that has not been retried triggers one refresh exchange.
// If it succeeds the request is sent again with the new token and that outcome
// is returned as is. If it fails the session is cleared and the returned error
// matches both ErrSessionExpired and the original *APIError. A ctx that ends
// while waiting for the refresh returns ctx's error and keeps the session.
// Every other failure is returned unchanged.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	body, err := c.send(ctx, req, c.session.AccessToken())
	if err != nil {
		if !IsStatus(err, http.StatusUnauthorized) || req.retried || req.SkipRefresh {
			return err
		}
		req.retried = true

		token, rerr := c.refresh(ctx)
		if rerr != nil {
			// The caller gave up while waiting; the exchange itself may still
			// succeed, so the session is left alone.
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(rerr, ctxErr) {
				return fmt.Errorf("[apiclient Do] %s %s: refresh abandoned: %w", req.Method, req.Path, rerr)
			}
			c.expire(ctx, req, rerr)
			return errors.Join(ErrSessionExpired, err)
		}

		body, err = c.send(ctx, req, token)
		if err != nil {
			return err
		}
	}
	return decode(req, body, out)
}

func (c *Client) refresh(ctx context.Context) (string, error) {
	tokens, err := c.refresher.Refresh(ctx, c.session.RefreshToken())
	if err != nil {
		return "", err
	}
	if err := c.session.SetAccessToken(ctx, tokens.Access); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store refreshed access token")
	}
	if tokens.Refresh != "" {
		if setter, ok := c.session.(RefreshTokenSetter); ok {
			if err := setter.SetRefreshToken(ctx, tokens.Refresh); err != nil {
				c.logger.Warn().Err(err).Msg("failed to store rotated refresh token")
			}
		}
	}
	return tokens.Access, nil
}

func (c *Client) expire(ctx context.Context, req *Request, cause error) {
	c.logger.Warn().Err(cause).Str("method", req.Method).Str("path", req.Path).Msg("token refresh failed, ending session")
	if err := c.session.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear expired session")
	}
	if c.onExpired != nil {
		c.onExpired(ctx)
	}
}

func (c *Client) send(ctx context.Context, req *Request, token string) ([]byte, error) {
	PrepareRequest(req, token)

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.observeRequest(req.Method, 0, time.Since(start))
		return nil, fmt.Errorf("[apiclient Do] %s %s: %w: %w", req.Method, req.Path, ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.observeRequest(req.Method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("[apiclient Do] %s %s: %w: %w", req.Method, req.Path, ErrNetwork, err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Bool("retry", req.retried).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(req, resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	body, ctype, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("[apiclient Do] %w: %w", ErrRequest, err)
	}
	httpReq.Header = req.Header.Clone()
	if ctype != "" && (httpReq.Header.Get(headerContentType) == "" || strings.HasPrefix(ctype, "multipart/")) {
		httpReq.Header.Set(headerContentType, ctype)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", contentTypeJSON)
	}
	return httpReq, nil
}

func decode(req *Request, body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("[apiclient Do] %s %s: failed to decode response: %w", req.Method, req.Path, err)
	}
	return nil
}
