// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package provider

import (
	"strings"
	"time"
)

// rateLimitMarkers is the vocabulary that classifies an error as
// provider-side throttling rather than a generic fault.
var rateLimitMarkers = []string{
	"429",
	"rate limit",
	"quota",
	"exceeded",
	"too many",
}

// IsRateLimitError reports whether errText matches the rate-limit
// vocabulary. Matching is case-insensitive substring search.
func IsRateLimitError(errText string) bool {
	lower := strings.ToLower(errText)
	for _, marker := range rateLimitMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// rateLimitCooldown derives the throttle reset window. An explicit positive
// override wins; otherwise the error text is inspected for temporal hints,
// falling back to four minutes when none are present.
func rateLimitCooldown(errText string, override time.Duration) time.Duration {
	if override > 0 {
		return override
	}

	lower := strings.ToLower(errText)
	switch {
	case strings.Contains(lower, "day"):
		return 24 * time.Hour
	case strings.Contains(lower, "hour"):
		return time.Hour
	case strings.Contains(lower, "minute"):
		return 10 * time.Minute
	default:
		return 4 * time.Minute
	}
}
