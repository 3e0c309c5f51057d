// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package blz

import (
	"encoding/json"
	"fmt"
)

// matcherConfigJSON is the wire representation of a MatcherConfig. The
// dictionary is not serialized, and neither is whether one was attached: a
// configuration returned by ParseJSON has a nil Dictionary.
type matcherConfigJSON struct {
	Type        string
	Quality     int
	WindowBits  int
	SearchDepth int
	NiceLen     int
}

// MarshalJSON encodes the configuration with a Type discriminator, so that
// encoder frontends can persist tuning presets next to configurations of
// other sequencer types.
func (cfg MatcherConfig) MarshalJSON() (p []byte, err error) {
	return json.Marshal(matcherConfigJSON{
		Type:        "Matcher",
		Quality:     cfg.Quality,
		WindowBits:  cfg.WindowBits,
		SearchDepth: cfg.SearchDepth,
		NiceLen:     cfg.NiceLen,
	})
}

// ParseJSON decodes a configuration written by MarshalJSON.
func ParseJSON(data []byte) (cfg MatcherConfig, err error) {
	var v matcherConfigJSON
	if err = json.Unmarshal(data, &v); err != nil {
		return MatcherConfig{}, fmt.Errorf(
			"blz: json data unmarshal error: %w", err)
	}
	if v.Type != "Matcher" {
		return MatcherConfig{}, fmt.Errorf(
			"blz: json data Type member must be Matcher, got %s",
			v.Type)
	}
	cfg = MatcherConfig{
		Quality:     v.Quality,
		WindowBits:  v.WindowBits,
		SearchDepth: v.SearchDepth,
		NiceLen:     v.NiceLen,
	}
	return cfg, nil
}
