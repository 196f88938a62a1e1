// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package provider

import (
	"cmp"
	"slices"
)

// SelectBest returns the name of the best eligible provider, or false when
// none qualifies. Candidates must be available, enabled, below the
// consecutive-failure threshold, and not in the exclude set. Ordering is
// ascending by (priority rank, consecutive failures): the globally
// preferred provider wins its rank outright, and within a rank the less
// recently failing peer wins. The selector performs no recovery; callers
// reconcile cooldowns before selecting.
func SelectBest(entries []Registration, store HealthStore, exclude map[string]bool) (string, bool) {
	type candidate struct {
		name     string
		rank     int
		failures int
	}

	var candidates []candidate
	for _, reg := range entries {
		if exclude[reg.Name] {
			continue
		}
		view, ok := store.View(reg.Name)
		if !ok || !view.Eligible {
			continue
		}
		candidates = append(candidates, candidate{
			name:     reg.Name,
			rank:     reg.Rank,
			failures: view.ConsecutiveFailures,
		})
	}

	if len(candidates) == 0 {
		return "", false
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		if c := cmp.Compare(a.rank, b.rank); c != 0 {
			return c
		}
		if c := cmp.Compare(a.failures, b.failures); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return candidates[0].name, true
}
