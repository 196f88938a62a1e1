// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package content

import (
	_ "embed"
	"strings"
	"sync"

	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

var (
	templatesOnce sync.Once
	templates     map[string]map[string]any
	templatesErr  error
)

func loadTemplates() (map[string]map[string]any, error) {
	templatesOnce.Do(func() {
		templatesErr = yaml.Unmarshal(templatesYAML, &templates)
	})
	if templatesErr != nil {
		return nil, dferr.Wrapf(templatesErr, dferr.CodeContentGenerateFailure, "decoding embedded deliverable templates")
	}
	return templates, nil
}

// FallbackPayload returns the static deliverable document for kind with
// the brief substituted into its placeholder tokens.
func FallbackPayload(kind Kind, brief Brief) (map[string]any, error) {
	all, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	doc, ok := all[string(kind)]
	if !ok {
		return nil, dferr.Errorf(dferr.CodeContentKindUnknown, "no fallback template for deliverable kind %q", kind)
	}

	concept := brief.Concept
	if concept == "" {
		concept = "Proven results"
	}
	replacer := strings.NewReplacer(
		"{{segment}}", orDefault(brief.Segment, "your market"),
		"{{product}}", orDefault(brief.Product, "your product"),
		"{{concept}}", concept,
	)

	return substitute(doc, replacer).(map[string]any), nil
}

// substitute walks the decoded YAML value and rewrites every string leaf.
// Maps and slices are copied so the cached template stays pristine.
func substitute(value any, r *strings.Replacer) any {
	switch v := value.(type) {
	case string:
		return r.Replace(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = substitute(item, r)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = substitute(item, r)
		}
		return out
	default:
		return v
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
