package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/shared"
	"github.com/desertthunder/qaren/internal/telemetry"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// DefaultExpiryMargin is subtracted from the advertised token lifetime.
const DefaultExpiryMargin = 60 * time.Second

// TokenCacheOpts configures a [TokenCache].
type TokenCacheOpts struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Margin       time.Duration    // defaults to [DefaultExpiryMargin]; negative disables it
	HTTPClient   *http.Client     // defaults to [http.DefaultClient]
	Now          func() time.Time // defaults to [time.Now]
}

// TokenCache holds one client-credentials bearer token and renews it lazily.
//
// Stale callers that arrive together share a single exchange.
type TokenCache struct {
	config clientcredentials.Config
	client *http.Client
	margin time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	token models.CachedToken
	group singleflight.Group
}

// NewTokenCache creates an empty cache. No exchange happens until [TokenCache.Token] is called.
func NewTokenCache(opts TokenCacheOpts) *TokenCache {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	switch {
	case opts.Margin == 0:
		opts.Margin = DefaultExpiryMargin
	case opts.Margin < 0:
		opts.Margin = 0
	}

	return &TokenCache{
		config: clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		client: opts.HTTPClient,
		margin: opts.Margin,
		now:    opts.Now,
	}
}

// Token returns a reusable bearer token, exchanging credentials first when the cached one is stale.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if tok := c.Snapshot(); tok.Valid(c.now()) {
		return tok.Value, nil
	}

	// The exchange is shared, so it must outlive any single caller's cancellation.
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan("token", func() (any, error) {
		// Another caller may have refreshed while this one waited on the group.
		if tok := c.Snapshot(); tok.Valid(c.now()) {
			return tok.Value, nil
		}
		return c.refresh(detached)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Snapshot returns a copy of the cached token.
func (c *TokenCache) Snapshot() models.CachedToken {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Invalidate drops the cached token so the next call to [TokenCache.Token] exchanges again.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = models.CachedToken{}
}

func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)

	tok, err := c.config.Token(ctx)
	if err == nil && tok.AccessToken == "" {
		err = shared.ErrNoAccessToken
	}
	telemetry.ObserveTokenExchange(err)
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrTokenExchange, err)
	}

	issued := c.now()

	cached := models.CachedToken{
		Value:     tok.AccessToken,
		ExpiresAt: issued.Add(lifetime(tok) - c.margin),
	}

	c.mu.Lock()
	c.token = cached
	c.mu.Unlock()

	return cached.Value, nil
}

// lifetime reads expires_in from the token response. A response without it yields zero.
func lifetime(tok *oauth2.Token) time.Duration {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v * float64(time.Second))
	case int64:
		return time.Duration(v) * time.Second
	case string:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(n * float64(time.Second))
		}
	}
	if tok.ExpiresIn > 0 {
		return time.Duration(tok.ExpiresIn) * time.Second
	}
	return 0
}
