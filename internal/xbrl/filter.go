// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xbrl

import (
	"strings"

	"github.com/pdiddy/industry-leverage/pkg/types"
)

// SelectFacts keeps the facts worth storing for a report of docType.
//
// Every policy restricts to the vocabulary and drops the net income
// concept. Quarterly filings also keep only quarter-tagged facts from the
// latest fiscal year present, which discards prior-year comparatives.
// Unknown document types get the annual policy.
func SelectFacts(facts []Fact, docType types.DocumentType, vocab types.Vocabulary) []Fact {
	tracked := vocab.Set()

	kept := make([]Fact, 0, len(facts))
	for _, f := range facts {
		if f.Concept == types.NetIncomeConcept || !tracked[f.Concept] || !f.Value.Valid {
			continue
		}
		kept = append(kept, f)
	}
	if docType != types.DocQuarterly {
		return kept
	}

	maxYear := 0
	for _, f := range kept {
		if int(f.Year) > maxYear {
			maxYear = int(f.Year)
		}
	}

	out := kept[:0]
	for _, f := range kept {
		if strings.Contains(f.FiscalPeriod, "Q") && int(f.Year) == maxYear {
			out = append(out, f)
		}
	}
	return out
}

// Reduce folds facts into a concept -> value map. When a concept appears
// more than once the last fact in response order wins.
func Reduce(facts []Fact) map[string]float64 {
	values := make(map[string]float64, len(facts))
	for _, f := range facts {
		values[f.Concept] = f.Value.V
	}
	return values
}
