// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xbrl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pdiddy/industry-leverage/internal/httputil"
)

// ErrNoSIC is returned when the API has no report carrying a SIC code for
// the ticker.
var ErrNoSIC = errors.New("no SIC code found")

// LookupSIC returns the SIC code of the ticker's report whose period end
// is closest to date. Ties go to the first report in response order.
func LookupSIC(ctx context.Context, client *httputil.Client, token, ticker string, date time.Time) (string, error) {
	params := url.Values{
		"entity.ticker": {ticker},
		"fields":        {"report.sic-code,report.period-end"},
	}
	reqURL := apiBase + "/api/v1/report/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(ctx, req)
	if err != nil {
		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrNoRequestSlot) || ctx.Err() != nil {
			return "", err
		}
		return "", &RemoteError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &RemoteError{StatusCode: resp.StatusCode, Body: httputil.Snippet(resp.Body, 512)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RemoteError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading report search: %w", err)}
	}
	if !gjson.ValidBytes(body) {
		return "", &RemoteError{StatusCode: resp.StatusCode, Err: fmt.Errorf("report search returned invalid JSON")}
	}

	var (
		best     string
		bestDiff time.Duration = -1
	)
	gjson.GetBytes(body, "data").ForEach(func(_, entry gjson.Result) bool {
		sic := entry.Get(`report\.sic-code`)
		end, err := time.Parse("2006-01-02", entry.Get(`report\.period-end`).String())
		if !sic.Exists() || sic.Type == gjson.Null || err != nil {
			return true
		}
		diff := end.Sub(date)
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = sic.String(), diff
		}
		return true
	})
	if best == "" {
		return "", fmt.Errorf("ticker %s: %w", ticker, ErrNoSIC)
	}
	return best, nil
}
