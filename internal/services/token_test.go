package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/qaren/internal/shared"
	tu "github.com/desertthunder/qaren/internal/testing"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(idp *tu.IdentityServer, clock *fakeClock) *TokenCache {
	return NewTokenCache(TokenCacheOpts{
		TokenURL:     idp.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Now:          clock.Now,
	})
}

func TestTokenCache(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			c := NewTokenCache(TokenCacheOpts{TokenURL: "http://example.com"})
			if c.margin != DefaultExpiryMargin {
				t.Errorf("expected default margin %v, got %v", DefaultExpiryMargin, c.margin)
			}
			if c.client != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if c.Snapshot().Value != "" {
				t.Error("expected empty cache")
			}
		})

		t.Run("Negative Margin Disables It", func(t *testing.T) {
			c := NewTokenCache(TokenCacheOpts{Margin: -1})
			if c.margin != 0 {
				t.Errorf("expected zero margin, got %v", c.margin)
			}
		})
	})

	t.Run("Token", func(t *testing.T) {
		t.Run("Exchanges Credentials As Form Parameters", func(t *testing.T) {
			idp := tu.NewIdentityServer(t, "tok-1", 1799)
			clock := &fakeClock{now: start}
			c := newTestCache(idp, clock)

			got, err := c.Token(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "tok-1" {
				t.Errorf("expected tok-1, got %s", got)
			}

			form := idp.LastForm()
			if form.Get("grant_type") != "client_credentials" {
				t.Errorf("expected grant_type=client_credentials, got %q", form.Get("grant_type"))
			}
			if form.Get("client_id") != "client-id" || form.Get("client_secret") != "client-secret" {
				t.Errorf("expected credentials in form, got %v", form)
			}
		})

		t.Run("Reuses A Valid Token", func(t *testing.T) {
			idp := tu.NewIdentityServer(t, "tok-1", 1799)
			clock := &fakeClock{now: start}
			c := newTestCache(idp, clock)

			for range 3 {
				if _, err := c.Token(context.Background()); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				clock.Advance(time.Minute)
			}
			if idp.Calls() != 1 {
				t.Errorf("expected 1 exchange, got %d", idp.Calls())
			}
		})

		t.Run("Stores Expiry With Margin", func(t *testing.T) {
			idp := tu.NewIdentityServer(t, "tok-1", 120)
			clock := &fakeClock{now: start}
			c := newTestCache(idp, clock)

			if _, err := c.Token(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			want := start.Add(60 * time.Second)
			if got := c.Snapshot().ExpiresAt; !got.Equal(want) {
				t.Errorf("expected expiry %v, got %v", want, got)
			}
		})

		t.Run("Renews A Stale Token", func(t *testing.T) {
			idp := tu.NewIdentityServer(t, "tok-1", 120)
			clock := &fakeClock{now: start}
			c := newTestCache(idp, clock)

			if _, err := c.Token(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			clock.Advance(59 * time.Second)
			if _, err := c.Token(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if idp.Calls() != 1 {
				t.Errorf("expected token to be reused before expiry, got %d exchanges", idp.Calls())
			}

			clock.Advance(time.Second)
			idp.AccessToken = "tok-2"
			got, err := c.Token(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "tok-2" {
				t.Errorf("expected renewed token tok-2, got %s", got)
			}
			if idp.Calls() != 2 {
				t.Errorf("expected 2 exchanges, got %d", idp.Calls())
			}
			if want := clock.Now().Add(60 * time.Second); !c.Snapshot().ExpiresAt.Equal(want) {
				t.Errorf("expected expiry %v, got %v", want, c.Snapshot().ExpiresAt)
			}
		})

		t.Run("Short Lifetime Is Never Reused", func(t *testing.T) {
			idp := tu.NewIdentityServer(t, "tok-1", 30)
			clock := &fakeClock{now: start}
			c := newTestCache(idp, clock)

			for range 2 {
				if _, err := c.Token(context.Background()); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
			}
			if idp.Calls() != 2 {
				t.Errorf("expected 2 exchanges, got %d", idp.Calls())
			}
		})

		t.Run("Concurrent Stale Callers Share One Exchange", func(t *testing.T) {
			idp := tu.NewIdentityServer(t, "tok-1", 1799)
			clock := &fakeClock{now: start}
			c := newTestCache(idp, clock)

			var wg sync.WaitGroup
			errs := make(chan error, 20)
			for range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := c.Token(context.Background()); err != nil {
						errs <- err
					}
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				t.Errorf("expected no error, got %v", err)
			}
			if idp.Calls() != 1 {
				t.Errorf("expected 1 exchange, got %d", idp.Calls())
			}
		})

		t.Run("Cancelled Caller Does Not Fail Shared Exchange", func(t *testing.T) {
			started := make(chan struct{})
			release := make(chan struct{})
			var once sync.Once
			idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				once.Do(func() { close(started) })
				<-release
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, `{"access_token":"tok-1","token_type":"Bearer","expires_in":1799}`)
			}))
			defer idp.Close()

			c := NewTokenCache(TokenCacheOpts{TokenURL: idp.URL, ClientID: "id", ClientSecret: "secret"})

			ctx1, cancel1 := context.WithCancel(context.Background())
			err1 := make(chan error, 1)
			go func() {
				_, err := c.Token(ctx1)
				err1 <- err
			}()
			<-started

			type result struct {
				value string
				err   error
			}
			res2 := make(chan result, 1)
			go func() {
				v, err := c.Token(context.Background())
				res2 <- result{v, err}
			}()
			time.Sleep(50 * time.Millisecond)

			cancel1()
			if err := <-err1; !errors.Is(err, context.Canceled) {
				t.Errorf("expected cancelled caller to get context.Canceled, got %v", err)
			}
			close(release)

			got := <-res2
			if got.err != nil {
				t.Fatalf("expected live caller to get a token, got %v", got.err)
			}
			if got.value != "tok-1" {
				t.Errorf("expected tok-1, got %q", got.value)
			}
			if v := c.Snapshot().Value; v != "tok-1" {
				t.Errorf("expected token to be cached, got %q", v)
			}
		})

		t.Run("Expiry Counts From Response Arrival", func(t *testing.T) {
			clock := &fakeClock{now: start}
			idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				clock.Advance(5 * time.Second)
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, `{"access_token":"tok-1","token_type":"Bearer","expires_in":1799}`)
			}))
			defer idp.Close()

			c := NewTokenCache(TokenCacheOpts{TokenURL: idp.URL, ClientID: "id", ClientSecret: "secret", Now: clock.Now})
			if _, err := c.Token(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			want := start.Add(5*time.Second + 1799*time.Second - DefaultExpiryMargin)
			if got := c.Snapshot().ExpiresAt; !got.Equal(want) {
				t.Errorf("expected expiry %v, got %v", want, got)
			}
		})

		t.Run("Identity Error Status", func(t *testing.T) {
			idp := tu.NewIdentityServer(t, "tok-1", 1799)
			idp.Status = http.StatusUnauthorized
			c := newTestCache(idp, &fakeClock{now: start})

			_, err := c.Token(context.Background())
			if !errors.Is(err, shared.ErrTokenExchange) {
				t.Errorf("expected ErrTokenExchange, got %v", err)
			}
			if c.Snapshot().Value != "" {
				t.Error("expected cache to stay empty after failure")
			}
		})

		t.Run("Missing Access Token", func(t *testing.T) {
			idp := tu.NewIdentityServer(t, "", 1799)
			c := newTestCache(idp, &fakeClock{now: start})

			if _, err := c.Token(context.Background()); !errors.Is(err, shared.ErrTokenExchange) {
				t.Errorf("expected ErrTokenExchange, got %v", err)
			}
		})

		t.Run("Unreachable Identity Endpoint", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			c := NewTokenCache(TokenCacheOpts{TokenURL: "http://identity.invalid/token", HTTPClient: client})

			if _, err := c.Token(context.Background()); !errors.Is(err, shared.ErrTokenExchange) {
				t.Errorf("expected ErrTokenExchange, got %v", err)
			}
		})
	})

	t.Run("Invalidate", func(t *testing.T) {
		idp := tu.NewIdentityServer(t, "tok-1", 1799)
		c := newTestCache(idp, &fakeClock{now: start})

		if _, err := c.Token(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		c.Invalidate()
		if c.Snapshot().Value != "" {
			t.Error("expected empty cache after Invalidate")
		}
		if _, err := c.Token(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if idp.Calls() != 2 {
			t.Errorf("expected 2 exchanges, got %d", idp.Calls())
		}
	})
}
