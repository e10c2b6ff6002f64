// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/industry-leverage/internal/checkpoint"
	"github.com/pdiddy/industry-leverage/internal/xbrl"
)

// DefaultRefreshAfter is the token age that forces re-authentication.
const DefaultRefreshAfter = xbrl.DefaultRefreshAfter

// Session is the mutable state of one ingestion run. It is owned by the
// Driver and never shared.
type Session struct {
	xbrl.TokenKeeper

	ID    string
	State checkpoint.State
}

// NewSession starts a session with state. A nil clock uses the system
// time; a non-positive refreshAfter uses DefaultRefreshAfter.
func NewSession(tokens TokenSource, clock Clock, refreshAfter time.Duration, state checkpoint.State) *Session {
	if clock == nil {
		clock = systemClock{}
	}
	return &Session{
		TokenKeeper: xbrl.NewTokenKeeper(tokens, clock.Now, refreshAfter),
		ID:          uuid.NewString(),
		State:       state,
	}
}
