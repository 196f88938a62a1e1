// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package content

import (
	"encoding/json"
	"regexp"
	"strings"

	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
)

var fencedJSON = regexp.MustCompile("(?is)```json\\s*(\\{.*?\\})\\s*```")

// ExtractJSON pulls the first JSON object out of model output. Models often
// wrap the document in a ```json fence or surround it with prose; both
// forms are accepted, as is a bare object.
func ExtractJSON(text string) (map[string]any, error) {
	candidate := ""

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			candidate = text[start : end+1]
		}
	}

	if candidate == "" {
		return nil, dferr.New(dferr.CodeContentParseInvalid, "no JSON object found in model output")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, dferr.Wrapf(err, dferr.CodeContentParseInvalid, "decoding JSON from model output")
	}
	return payload, nil
}
