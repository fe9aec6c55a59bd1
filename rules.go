// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"fmt"

	"github.com/woozymasta/pathrules"
)

// lzRules decides which staged entries get the title LZ codec, from ordered
// include/exclude path rules. A nil *lzRules selects LZ for nothing.
type lzRules struct {
	matcher *pathrules.Matcher
}

// compileLZRules normalizes rule patterns to slash form, drops blank ones,
// and compiles the rest. An effectively empty rule set compiles to nil.
func compileLZRules(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*lzRules, error) {
	compiled := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := NormalizePath(rule.Pattern)
		if pattern == "" {
			continue
		}

		compiled = append(compiled, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}
	if len(compiled) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(compiled, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidCompressRules, err)
	}

	return &lzRules{matcher: matcher}, nil
}

// tagFor picks the codec for one staged entry. An explicit non-store tag in
// opts wins over the rules; otherwise paths included by the rules get LZ and
// everything else is stored raw.
func (r *lzRules) tagFor(opts AddOptions, logical string) Compression {
	if opts.Compression != CompressionStore {
		return opts.Compression
	}
	if r == nil || r.matcher == nil {
		return CompressionStore
	}

	candidate := NormalizePath(logical)
	if candidate == "" || !r.matcher.Included(candidate, false) {
		return CompressionStore
	}

	return CompressionLZ
}
