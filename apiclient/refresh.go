package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/singleflight"
)

var errNoRefreshToken = errors.New("no refresh token")

// RefreshedTokens is the result of a refresh exchange. Refresh is set only when
// the backend rotates the refresh token.
type RefreshedTokens struct {
	Access  string
	Refresh string
}

type refreshResponse struct {
	Access      string `json:"access"`
	AccessToken string `json:"access_token"`
	Refresh     string `json:"refresh"`
}

// Refresher exchanges refresh tokens for new access tokens. Concurrent calls
// carrying the same refresh token share one exchange, so a burst of 401s from
// one browser produces a single call to the refresh endpoint.
type Refresher struct {
	http    *http.Client
	url     string
	metrics *Metrics
	group   singleflight.Group
}

func NewRefresher(httpClient *http.Client, refreshURL string, metrics *Metrics) *Refresher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Refresher{
		http:    httpClient,
		url:     refreshURL,
		metrics: metrics,
	}
}

// Refresh returns a new access token for refreshToken. The exchange itself is
// not cancelled when one waiting caller gives up; it is bounded by the HTTP
// client timeout.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (RefreshedTokens, error) {
	if refreshToken == "" {
		r.metrics.observeRefresh(refreshFailed)
		return RefreshedTokens{}, errNoRefreshToken
	}

	exchangeCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(refreshToken, func() (any, error) {
		tokens, err := r.exchange(exchangeCtx, refreshToken)
		if err != nil {
			r.metrics.observeRefresh(refreshFailed)
			return nil, err
		}
		r.metrics.observeRefresh(refreshOK)
		return tokens, nil
	})

	select {
	case <-ctx.Done():
		return RefreshedTokens{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return RefreshedTokens{}, res.Err
		}
		return res.Val.(RefreshedTokens), nil
	}
}

func (r *Refresher) exchange(ctx context.Context, refreshToken string) (RefreshedTokens, error) {
	payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return RefreshedTokens{}, fmt.Errorf("[apiclient Refresh] %w: %w", ErrRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return RefreshedTokens{}, fmt.Errorf("[apiclient Refresh] %w: %w", ErrRequest, err)
	}
	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeJSON)

	resp, err := r.http.Do(httpReq)
	if err != nil {
		return RefreshedTokens{}, fmt.Errorf("[apiclient Refresh] %w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return RefreshedTokens{}, fmt.Errorf("[apiclient Refresh] %w: %w", ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return RefreshedTokens{}, newAPIError(&Request{Method: http.MethodPost, Path: httpReq.URL.Path}, resp.StatusCode, body)
	}

	var decoded refreshResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return RefreshedTokens{}, fmt.Errorf("[apiclient Refresh] failed to decode response: %w", err)
	}
	access := decoded.Access
	if access == "" {
		access = decoded.AccessToken
	}
	if access == "" {
		return RefreshedTokens{}, errors.New("[apiclient Refresh] response carried no access token")
	}
	return RefreshedTokens{Access: access, Refresh: decoded.Refresh}, nil
}
