// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xbrl

import (
	"context"
	"fmt"
	"time"
)

// DefaultRefreshAfter is the token age that forces re-authentication,
// five minutes inside the API's one-hour lifetime.
const DefaultRefreshAfter = 55 * time.Minute

// TokenSource issues API tokens.
type TokenSource interface {
	Token(ctx context.Context) (Token, error)
}

// TokenKeeper holds the current access token and fetches a new one once
// the held token reaches RefreshAfter. It is not safe for concurrent use.
type TokenKeeper struct {
	Source       TokenSource
	Now          func() time.Time
	RefreshAfter time.Duration

	// Refreshes counts token fetches after the initial one.
	Refreshes int

	token Token
}

// NewTokenKeeper returns a keeper for source. A nil now uses time.Now; a
// non-positive refreshAfter uses DefaultRefreshAfter.
func NewTokenKeeper(source TokenSource, now func() time.Time, refreshAfter time.Duration) TokenKeeper {
	if now == nil {
		now = time.Now
	}
	if refreshAfter <= 0 {
		refreshAfter = DefaultRefreshAfter
	}
	return TokenKeeper{Source: source, Now: now, RefreshAfter: refreshAfter}
}

// Authenticate fetches the initial token.
func (k *TokenKeeper) Authenticate(ctx context.Context) error {
	tok, err := k.Source.Token(ctx)
	if err != nil {
		return err
	}
	k.token = k.stamp(tok)
	return nil
}

// AccessToken returns a token young enough for the next call.
func (k *TokenKeeper) AccessToken(ctx context.Context) (string, error) {
	if k.token.Age(k.Now()) >= k.RefreshAfter {
		tok, err := k.Source.Token(ctx)
		if err != nil {
			return "", fmt.Errorf("refreshing token: %w", err)
		}
		k.token = k.stamp(tok)
		k.Refreshes++
	}
	return k.token.AccessToken, nil
}

// Current returns the held token.
func (k *TokenKeeper) Current() Token { return k.token }

// stamp records issuance on the keeper's clock so refresh decisions and
// issue times share one time source.
func (k *TokenKeeper) stamp(tok Token) Token {
	tok.IssuedAt = k.Now()
	return tok
}
