// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xbrl

import (
	"context"

	"github.com/pdiddy/industry-leverage/internal/httputil"
	"github.com/pdiddy/industry-leverage/pkg/types"
)

// Extractor turns one report into its tracked concept values.
type Extractor struct {
	Client     *httputil.Client
	Vocabulary types.Vocabulary
}

// Extract fetches the facts for ref and reduces them. When nothing
// survives filtering it returns ErrEmptyResult together with the source
// URL of the first raw fact, if any.
func (e *Extractor) Extract(ctx context.Context, token string, ref types.ReportRef) (types.ExtractedConcepts, error) {
	facts, err := FetchFacts(ctx, e.Client, token, ref.ReportID)
	if err != nil {
		return types.ExtractedConcepts{}, err
	}

	var out types.ExtractedConcepts
	if len(facts) > 0 {
		out.SourceURL = facts[0].SourceURL()
	}
	out.Values = Reduce(SelectFacts(facts, ref.DocumentType, e.Vocabulary))
	if len(out.Values) == 0 {
		return out, ErrEmptyResult
	}
	return out, nil
}
