// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xbrl

import (
	"errors"
	"fmt"

	"github.com/pdiddy/industry-leverage/internal/httputil"
)

// ErrRateLimited is returned when the API answers HTTP 429. It is fatal
// to an ingestion run.
var ErrRateLimited = httputil.ErrRateLimited

// ErrNoRequestSlot is returned when the request pacer gives up before a
// call is sent. Callers treat it like cancellation.
var ErrNoRequestSlot = httputil.ErrNoRequestSlot

// ErrEmptyResult is returned by Extract when no tracked concept survives
// filtering. The accompanying ExtractedConcepts still carries the source
// URL when the raw result had one.
var ErrEmptyResult = errors.New("no tracked concepts in result")

// RemoteError is a failed API call other than throttling.
type RemoteError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("xbrl api: HTTP %d: %s", e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("xbrl api: HTTP %d", e.StatusCode)
	case e.Err != nil:
		return "xbrl api: " + e.Err.Error()
	default:
		return "xbrl api: request failed"
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }
