// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

// Package tokens provides approximate token counting for generation
// results. Counts are advisory metadata, not billing figures.
package tokens

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// Estimator counts tokens with a tiktoken encoding when one is available,
// falling back to a words-times-1.3 heuristic otherwise. The zero value is
// a pure-heuristic estimator, which is what tests should use.
type Estimator struct {
	enc *tiktoken.Tiktoken
}

// NewEstimator builds an Estimator, loading the encoding best-effort: if
// the BPE data cannot be loaded the estimator silently degrades to the
// heuristic.
func NewEstimator() *Estimator {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return &Estimator{}
	}
	return &Estimator{enc: enc}
}

// Count returns the approximate token count of text.
func (e *Estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	if e != nil && e.enc != nil {
		return len(e.enc.Encode(text, nil, nil))
	}
	return heuristicCount(text)
}

// heuristicCount approximates tokens as 1.3 per whitespace-separated word.
func heuristicCount(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}
