//go:build unit

package bot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bahooo22/HannaWhishlist/internal/pkg/clock"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T, exchanges *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/connect/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		require.Equal(t, "bot-client", r.PostForm.Get("client_id"))

		n := exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":3600,"token_type":"Bearer"}`, n)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAuthConfig(url string) config.AuthConfig {
	return config.AuthConfig{
		URL:          url,
		ClientID:     "bot-client",
		ClientSecret: "secret",
		Scope:        "api",
		ExpiryMargin: 30 * time.Second,
	}
}

func TestTokenSource_CachesUntilExpiry(t *testing.T) {
	var exchanges atomic.Int32
	srv := newAuthServer(t, &exchanges)
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := NewTokenSource(newTestAuthConfig(srv.URL), srv.Client(), clk)

	token, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	// Still inside the expiry window, so no second exchange happens.
	clk.Add(30 * time.Minute)
	token, err = source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, int32(1), exchanges.Load())
}

func TestTokenSource_RefreshesAfterExpiry(t *testing.T) {
	var exchanges atomic.Int32
	srv := newAuthServer(t, &exchanges)
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := NewTokenSource(newTestAuthConfig(srv.URL), srv.Client(), clk)

	_, err := source.Token(context.Background())
	require.NoError(t, err)

	// The margin shaves 30s off the hour, so 3590s is already past expiry.
	clk.Add(3590 * time.Second)
	token, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
	assert.Equal(t, int32(2), exchanges.Load())
}

func TestTokenSource_ConcurrentCallersShareOneExchange(t *testing.T) {
	var exchanges atomic.Int32
	srv := newAuthServer(t, &exchanges)
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := NewTokenSource(newTestAuthConfig(srv.URL), srv.Client(), clk)

	const callers = 16
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errors := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errors[i] = source.Token(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errors[i])
		assert.Equal(t, "token-1", tokens[i])
	}
	assert.Equal(t, int32(1), exchanges.Load())
}

func TestTokenSource_RefreshSurvivesCallerCancellation(t *testing.T) {
	var exchanges atomic.Int32
	srv := newAuthServer(t, &exchanges)
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := NewTokenSource(newTestAuthConfig(srv.URL), srv.Client(), clk)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	token, err := source.Token(ctx)
	require.NoError(t, err, "a cancelled event context must not abort the shared refresh")
	assert.Equal(t, "token-1", token)
}

func TestTokenSource_ExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_client", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := NewTokenSource(newTestAuthConfig(srv.URL), srv.Client(), clk)

	_, err := source.Token(context.Background())
	assert.Error(t, err)
}
