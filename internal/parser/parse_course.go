package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hydrocamel/sonarscan/pkg/core"
)

// ParseCourse parses a ';'-separated list of "dRow,dColxDuration" segments,
// e.g. "0,1x8;2,2x2".
func ParseCourse(s string) ([]core.Segment, error) {
	var course []core.Segment
	for _, part := range splitList(s) {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, err
		}
		course = append(course, seg)
	}
	return course, nil
}

func parseSegment(s string) (core.Segment, error) {
	i := strings.LastIndexAny(s, "xX")
	if i < 0 {
		return core.Segment{}, fmt.Errorf("%w: %q: expected dRow,dColxDuration", ErrInvalidSegment, s)
	}
	a, b, ok := parsePair(s[:i])
	if !ok {
		return core.Segment{}, fmt.Errorf("%w: %q: expected velocity dRow,dCol", ErrInvalidSegment, s)
	}
	dRow, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return core.Segment{}, fmt.Errorf("%w: %q: dRow: %v", ErrInvalidSegment, s, err)
	}
	dCol, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return core.Segment{}, fmt.Errorf("%w: %q: dCol: %v", ErrInvalidSegment, s, err)
	}
	duration, err := parseIntFromFloat(strings.TrimSpace(s[i+1:]))
	if err != nil {
		return core.Segment{}, fmt.Errorf("%w: %q: duration: %v", ErrInvalidSegment, s, err)
	}
	if duration <= 0 {
		return core.Segment{}, fmt.Errorf("%w: %q: duration must be positive", ErrInvalidSegment, s)
	}
	return core.Segment{
		Velocity: core.Velocity{DRow: dRow, DCol: dCol},
		Duration: duration,
	}, nil
}
