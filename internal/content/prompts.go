// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package content

import (
	"fmt"
	"strings"
)

func actionPlanPrompt(brief Brief) string {
	var sb strings.Builder
	sb.WriteString("Create a 90-day strategic action plan as a single valid JSON object.\n\n")
	writeBriefContext(&sb, brief)
	sb.WriteString(`
OUTPUT FORMAT: valid JSON with exactly these keys:
- plan_90_days: list of actions, each with "action", "deadline", "owner", "priority", "resources" (list), "indicators" (list)
- milestones: list of objects with "milestone", "target_date" (YYYY-MM-DD), "success_criteria" (list)
- critical_resources: list of strings
- risks: list of objects with "risk", "probability", "impact", "mitigation"

Return only the JSON object, no prose around it.`)
	return sb.String()
}

func keywordsPrompt(brief Brief) string {
	var sb strings.Builder
	sb.WriteString("Analyze strategic search keywords and return a single valid JSON object.\n\n")
	writeBriefContext(&sb, brief)
	sb.WriteString(`
OUTPUT FORMAT: valid JSON with exactly these keys:
- primary_keywords: list of objects with "keyword", "estimated_volume" (number), "competition", "intent", "priority"
- secondary_keywords: same shape as primary_keywords
- long_tail_keywords: same shape as primary_keywords
- seo_opportunities: list of strings
- content_strategy: object with "blog_posts", "videos", "infographics" (each a list of strings)

Return only the JSON object, no prose around it.`)
	return sb.String()
}

func positioningPrompt(brief Brief) string {
	var sb strings.Builder
	sb.WriteString("Define the strategic market positioning and return a single valid JSON object.\n\n")
	writeBriefContext(&sb, brief)
	sb.WriteString(`
OUTPUT FORMAT: valid JSON with exactly these keys:
- value_proposition: string
- differentiators: list of strings
- core_message: string
- blue_ocean_strategy: string
- competitive_position: string
- brand_architecture: object with "personality", "tone_of_voice", "values" (list of strings)

Return only the JSON object, no prose around it.`)
	return sb.String()
}

func visualProofPrompt(brief Brief) string {
	concept := brief.Concept
	if concept == "" {
		concept = fmt.Sprintf("Proven results with %s", brief.Product)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Design a convincing visual proof for the concept: %q.\n\n", concept)
	writeBriefContext(&sb, brief)
	fmt.Fprintf(&sb, "\nSUGGESTED PROOF TYPE: %s\n", selectProofType(concept))
	sb.WriteString(`
OUTPUT FORMAT: valid JSON with exactly these keys:
- name: proof title
- target_concept: the concept being demonstrated (same as the input)
- proof_type: the proof type used
- experiment: detailed description of what will be shown visually
- materials: list of visual materials needed
- script: object with "preparation", "execution", "expected_impact"
- success_metrics: list of metrics to evaluate the proof

Return only the JSON object, no prose around it.`)
	return sb.String()
}

func writeBriefContext(sb *strings.Builder, brief Brief) {
	sb.WriteString("CONTEXT:\n")
	if brief.Segment != "" {
		fmt.Fprintf(sb, "- Market segment: %s\n", brief.Segment)
	}
	if brief.Product != "" {
		fmt.Fprintf(sb, "- Product: %s\n", brief.Product)
	}
}

// proofTypes maps concept vocabulary to the best-fitting proof format.
var proofTypes = []struct {
	label   string
	markers []string
}{
	{"before/after transformation", []string{"result", "growth", "improvement", "performance", "gain", "proven"}},
	{"competitive comparison", []string{"competitor", "better", "superior", "advantage", "differentiator"}},
	{"results timeline", []string{"time", "speed", "progression", "journey"}},
	{"visual social proof", []string{"customer", "people", "social", "testimonial", "trust", "feedback"}},
	{"process demonstration", []string{"process", "method", "how it works", "step by step"}},
}

func selectProofType(concept string) string {
	lowered := strings.ToLower(concept)
	for _, pt := range proofTypes {
		for _, marker := range pt.markers {
			if strings.Contains(lowered, marker) {
				return pt.label
			}
		}
	}
	return "visual social proof"
}
