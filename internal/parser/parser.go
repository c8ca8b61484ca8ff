// Package parser turns scenario text (target maps, cell lists and course strings) into
// the core types the scan engine is built from.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidCell      = errors.New("invalid cell")
	ErrInvalidSegment   = errors.New("invalid course segment")
	ErrInvalidTargetMap = errors.New("invalid target map")
)

// parseIntFromFloat parses a string that may be an integer ("7") or a whole float ("7.0").
func parseIntFromFloat(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a whole number", s)
	}
	return int(f), nil
}

// parsePair splits "a,b" into two trimmed fields.
func parsePair(s string) (string, string, bool) {
	a, b, ok := strings.Cut(s, ",")
	if !ok || strings.Contains(b, ",") {
		return "", "", false
	}
	return strings.TrimSpace(a), strings.TrimSpace(b), true
}

// splitList splits a ';'-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
