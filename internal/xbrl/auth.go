// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xbrl talks to the XBRL US API: password-grant authentication,
// fact search by report, and SIC lookup by ticker.
package xbrl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/industry-leverage/internal/httputil"
)

// apiBase is the XBRL US API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.xbrl.us"

// SetBaseURL overrides the API root. An empty value keeps the default.
func SetBaseURL(base string) {
	if base != "" {
		apiBase = strings.TrimRight(base, "/")
	}
}

// TokenLifetime is how long the API honours an access token.
const TokenLifetime = 60 * time.Minute

// Credentials are the four values the password grant requires.
type Credentials struct {
	Email        string
	Password     string
	ClientID     string
	ClientSecret string
}

// Missing lists the names of empty credential fields.
func (c Credentials) Missing() []string {
	var missing []string
	if c.Email == "" {
		missing = append(missing, "XBRL_EMAIL")
	}
	if c.Password == "" {
		missing = append(missing, "XBRL_PASSWORD")
	}
	if c.ClientID == "" {
		missing = append(missing, "XBRL_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "XBRL_SECRET")
	}
	return missing
}

// AuthError reports missing credentials or a rejected token request.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return "xbrl auth: " + e.Reason + ": " + e.Err.Error()
	}
	return "xbrl auth: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// Token is a bearer token and the time it was issued.
type Token struct {
	AccessToken  string
	RefreshToken string
	IssuedAt     time.Time
}

// Age returns how long ago the token was issued.
func (t Token) Age(now time.Time) time.Duration {
	return now.Sub(t.IssuedAt)
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Authenticate exchanges credentials for a token. The token does not
// refresh itself; callers track its age.
func Authenticate(ctx context.Context, client *httputil.Client, creds Credentials, platform string, now time.Time) (Token, error) {
	if missing := creds.Missing(); len(missing) > 0 {
		return Token{}, &AuthError{Reason: "missing credentials: " + strings.Join(missing, ", ")}
	}
	if platform == "" {
		platform = "go"
	}

	form := url.Values{
		"username":      {creds.Email},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
		"password":      {creds.Password},
		"grant_type":    {"password"},
		"platform":      {platform},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(ctx, req)
	if err != nil {
		return Token{}, &AuthError{Reason: "token request failed", Err: err}
	}
	defer resp.Body.Close()

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Token{}, &AuthError{Reason: fmt.Sprintf("decoding token response (HTTP %d)", resp.StatusCode), Err: err}
	}
	if body.Error != "" {
		reason := body.Error
		if body.ErrorDescription != "" {
			reason += ": " + body.ErrorDescription
		}
		return Token{}, &AuthError{Reason: "rejected: " + reason}
	}
	if resp.StatusCode != http.StatusOK || body.AccessToken == "" {
		return Token{}, &AuthError{Reason: fmt.Sprintf("no access token (HTTP %d)", resp.StatusCode)}
	}

	return Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		IssuedAt:     now,
	}, nil
}

// Authenticator issues tokens for a fixed set of credentials.
type Authenticator struct {
	Client      *httputil.Client
	Credentials Credentials
	Platform    string
	Now         func() time.Time
}

// Token requests a fresh token.
func (a *Authenticator) Token(ctx context.Context) (Token, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return Authenticate(ctx, a.Client, a.Credentials, a.Platform, now())
}
