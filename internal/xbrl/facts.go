// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xbrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/industry-leverage/internal/httputil"
)

// factFields is the projection requested from fact search.
var factFields = []string{
	"concept.local-name.sort(ASC)",
	"entity.cik",
	"report.sic-code",
	"report.sec-url",
	"period.year",
	"period.end",
	"period.instant",
	"period.fiscal-period",
	"fact.value",
	"dimensions",
	"dimensions.count",
	"fact.value-link",
	"member.is-base",
	"member.local-name",
	"member.member-value",
	"member.namespace",
	"fact.accuracy-index",
}

// Fact is one row of a fact search response.
type Fact struct {
	Concept      string    `json:"concept.local-name"`
	Value        flexFloat `json:"fact.value"`
	Year         flexInt   `json:"period.year"`
	FiscalPeriod string    `json:"period.fiscal-period"`
	IsBase       *bool     `json:"member.is-base"`
	SECURL       string    `json:"report.sec-url"`
	ValueLink    string    `json:"fact.value-link"`
}

// SourceURL returns the filing URL, falling back to the fact link.
func (f Fact) SourceURL() string {
	if f.SECURL != "" {
		return f.SECURL
	}
	return f.ValueLink
}

// flexFloat accepts a JSON number or a numeric string. Anything else
// leaves Valid false.
type flexFloat struct {
	V     float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = flexFloat{}
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*f = flexFloat{}
		return nil
	}
	*f = flexFloat{V: v, Valid: true}
	return nil
}

// flexInt accepts a JSON number or a numeric string; anything else is 0.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	var ff flexFloat
	if err := ff.UnmarshalJSON(b); err != nil {
		return err
	}
	*n = flexInt(int(ff.V))
	return nil
}

type factResponse struct {
	Data []Fact `json:"data"`
}

// FetchFacts runs one fact search for reportID. HTTP 429 yields
// ErrRateLimited and a refused limiter wait yields ErrNoRequestSlot; any
// other failure is a *RemoteError.
func FetchFacts(ctx context.Context, client *httputil.Client, token, reportID string) ([]Fact, error) {
	params := url.Values{
		"report.id": {reportID},
		"fields":    {strings.Join(factFields, ",")},
	}
	reqURL := apiBase + "/api/v1/fact/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(ctx, req)
	if err != nil {
		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrNoRequestSlot) || ctx.Err() != nil {
			return nil, err
		}
		return nil, &RemoteError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: httputil.Snippet(resp.Body, 512)}
	}

	var body factResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding fact search: %w", err)}
	}
	return body.Data, nil
}
