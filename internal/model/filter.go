// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// Filter narrows retrieval to one regulation.
type Filter string

const (
	FilterAll   Filter = "All"
	FilterGDPR  Filter = "GDPR"
	FilterAIAct Filter = "AI Act"
)

// Filters lists the filters in cycle order.
var Filters = []Filter{FilterAll, FilterGDPR, FilterAIAct}

// String returns the display name.
func (f Filter) String() string {
	return string(f)
}

// Next returns the filter after f in cycle order.
func (f Filter) Next() Filter {
	for i, candidate := range Filters {
		if candidate == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// Regulation returns the wire value: nil for All.
func (f Filter) Regulation() *string {
	if f == FilterAll || f == "" {
		return nil
	}
	s := string(f)
	return &s
}

// ParseFilter accepts the display names case-insensitively, plus "ai-act"
// and "aiact" for shells where quoting a space is awkward.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "gdpr":
		return FilterGDPR, nil
	case "ai act", "ai-act", "aiact", "ai_act":
		return FilterAIAct, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter %q (want All, GDPR or AI Act)", s)
	}
}
