// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned (wrapped) for unparsable cache times.
var ErrInvalidDuration = errors.New("invalid duration")

const day = 24 * time.Hour

var durationUnits = map[string]time.Duration{
	"s":   time.Second,
	"min": time.Minute,
	"h":   time.Hour,
	"d":   day,
	"w":   7 * day,
	"mo":  30 * day,
	"y":   365 * day,
}

var (
	durationTerm    = regexp.MustCompile(`([0-9]+)\s*(min|mo|s|h|d|w|y)`)
	durationPattern = regexp.MustCompile(`^(?:\s*[0-9]+\s*(?:min|mo|s|h|d|w|y))+\s*$`)
)

// ParseDuration parses a cache time such as "2d", "1w 3h" or "3600".
// A bare integer is a number of seconds.
func ParseDuration(value string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidDuration)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: %q is negative", ErrInvalidDuration, value)
		}
		return time.Duration(n) * time.Second, nil
	}
	if !durationPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, value)
	}

	var total time.Duration
	for _, m := range durationTerm.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrInvalidDuration, value, err)
		}
		total += time.Duration(n) * durationUnits[m[2]]
	}
	return total, nil
}
