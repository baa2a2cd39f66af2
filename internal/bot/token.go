package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bahooo22/HannaWhishlist/internal/pkg/clock"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/config"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/errs"

	"golang.org/x/sync/singleflight"
)

// TokenSource exchanges client credentials for a bearer token and caches it
// until shortly before expiry. Concurrent refreshes collapse into a single
// exchange via singleflight.
type TokenSource struct {
	httpClient *http.Client
	cfg        config.AuthConfig
	clock      clock.Clock

	group singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewTokenSource(cfg config.AuthConfig, httpClient *http.Client, clk clock.Clock) *TokenSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TokenSource{
		httpClient: httpClient,
		cfg:        cfg,
		clock:      clk,
	}
}

func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.token != "" && s.clock.Now().Before(s.expiresAt) {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("token", func() (any, error) {
		// Another caller may have refreshed while we waited on the group.
		s.mu.Lock()
		if s.token != "" && s.clock.Now().Before(s.expiresAt) {
			token := s.token
			s.mu.Unlock()
			return token, nil
		}
		s.mu.Unlock()

		// The exchange serves every caller sharing this flight, so it must
		// not die with the one event context that happened to win the race.
		// The HTTP client timeout still bounds it.
		token, expiresAt, err := s.exchange(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.token = token
		s.expiresAt = expiresAt
		s.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (s *TokenSource) exchange(ctx context.Context) (string, time.Time, error) {
	form := url.Values{
		"client_id":     {s.cfg.ClientID},
		"client_secret": {s.cfg.ClientSecret},
		"grant_type":    {"client_credentials"},
		"scope":         {s.cfg.Scope},
	}

	endpoint := strings.TrimRight(s.cfg.URL, "/") + "/connect/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, errs.Wrap(err, "failed to build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, errs.Wrap(err, "token exchange failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", time.Time{}, errs.Wrap(err, "failed to read token response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, errs.New(fmt.Sprintf("token endpoint returned %d", resp.StatusCode))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", time.Time{}, errs.Wrap(err, "failed to decode token response")
	}
	if tr.AccessToken == "" {
		return "", time.Time{}, errs.New("token response has no access_token")
	}

	// Treat the token as expired a bit early so an in-flight API call never
	// carries a token that dies mid-request.
	expiresAt := s.clock.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - s.cfg.ExpiryMargin)
	return tr.AccessToken, expiresAt, nil
}
