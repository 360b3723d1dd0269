// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// selectMatcher holds compiled member selection rules.
type selectMatcher struct {
	matcher *pathrules.Matcher
}

// newSelectMatcher compiles member selection rules.
// Nil matcher is returned for empty rule sets and selects everything.
func newSelectMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*selectMatcher, error) {
	rules = normalizeSelectRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	applySelectDefaults(&opts)

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidSelectRule, err)
	}

	return &selectMatcher{matcher: matcher}, nil
}

// normalizeSelectRules trims rule patterns and drops empty patterns.
func normalizeSelectRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := strings.TrimSpace(rule.Pattern)
		pattern = strings.TrimPrefix(pattern, "./")
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Selected reports whether the member name passes the selection rules.
func (m *selectMatcher) Selected(name string) bool {
	if m == nil || m.matcher == nil {
		return true
	}

	if name == "" {
		return false
	}

	return m.matcher.Included(name, false)
}

// IncludeRules builds include rules from raw patterns.
func IncludeRules(patterns ...string) []pathrules.Rule {
	return buildRules(pathrules.Rule{Action: pathrules.ActionInclude}, patterns)
}

// ExcludeRules builds exclude rules from raw patterns.
func ExcludeRules(patterns ...string) []pathrules.Rule {
	return buildRules(pathrules.Rule{Action: pathrules.ActionExclude}, patterns)
}

// buildRules creates one rule per non-empty pattern with the template action.
func buildRules(template pathrules.Rule, patterns []string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		rule := template
		rule.Pattern = pattern
		rules = append(rules, rule)
	}

	return rules
}
