package board

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind discriminates the segment variants a dart can land on.
type Kind int

const (
	Miss Kind = iota
	Single
	Double
	Triple
	SingleBull
	DoubleBull
)

// Segment is a decoded board segment. Number is only meaningful for
// Single/Double/Triple and is always in 1..20.
type Segment struct {
	Kind   Kind
	Number int
}

var ErrInvalidSegment = errors.New("invalid segment label")

// Parse decodes a board label ("MISS", "SB", "DB", "S1".."S20", "D1".."D20",
// "T1".."T20") into a Segment. Anything else is rejected.
func Parse(label string) (Segment, error) {
	switch label {
	case "MISS":
		return Segment{Kind: Miss}, nil
	case "SB":
		return Segment{Kind: SingleBull}, nil
	case "DB":
		return Segment{Kind: DoubleBull}, nil
	}
	if len(label) < 2 {
		return Segment{}, fmt.Errorf("%w: %q", ErrInvalidSegment, label)
	}
	var kind Kind
	switch label[0] {
	case 'S':
		kind = Single
	case 'D':
		kind = Double
	case 'T':
		kind = Triple
	default:
		return Segment{}, fmt.Errorf("%w: %q", ErrInvalidSegment, label)
	}
	n, err := strconv.Atoi(label[1:])
	if err != nil || n < 1 || n > 20 {
		return Segment{}, fmt.Errorf("%w: %q", ErrInvalidSegment, label)
	}
	return Segment{Kind: kind, Number: n}, nil
}

// Label returns the canonical board label for the segment.
func (s Segment) Label() string {
	switch s.Kind {
	case Miss:
		return "MISS"
	case SingleBull:
		return "SB"
	case DoubleBull:
		return "DB"
	case Single:
		return "S" + strconv.Itoa(s.Number)
	case Double:
		return "D" + strconv.Itoa(s.Number)
	case Triple:
		return "T" + strconv.Itoa(s.Number)
	}
	return ""
}

// BaseValue is the segment's face value before the multiplier.
func (s Segment) BaseValue() int {
	switch s.Kind {
	case Miss:
		return 0
	case SingleBull, DoubleBull:
		return 25
	default:
		return s.Number
	}
}

// Multiplier is 0 for a miss, 1/2/3 otherwise.
func (s Segment) Multiplier() int {
	switch s.Kind {
	case Miss:
		return 0
	case Single, SingleBull:
		return 1
	case Double, DoubleBull:
		return 2
	case Triple:
		return 3
	}
	return 0
}

// Value is the points scored by the dart.
func (s Segment) Value() int {
	return s.BaseValue() * s.Multiplier()
}

// IsDouble reports whether the dart satisfies a double-out requirement.
func (s Segment) IsDouble() bool {
	return s.Kind == Double || s.Kind == DoubleBull
}

// CricketTargets are the scorable cricket numbers, in scoreboard order.
var CricketTargets = []string{"20", "19", "18", "17", "16", "15", "BULL"}

// CricketTarget maps the segment onto the cricket scoreboard. ok is false for
// misses and numbers outside 15..20.
func (s Segment) CricketTarget() (target string, ok bool) {
	switch s.Kind {
	case SingleBull, DoubleBull:
		return "BULL", true
	case Single, Double, Triple:
		if s.Number >= 15 && s.Number <= 20 {
			return strconv.Itoa(s.Number), true
		}
	}
	return "", false
}

// CricketMarks is the number of marks the dart earns on its target.
// A double bull counts two, a single bull one, numbers their multiplier.
func (s Segment) CricketMarks() int {
	switch s.Kind {
	case DoubleBull:
		return 2
	case SingleBull:
		return 1
	default:
		return s.Multiplier()
	}
}

// CricketTargetValue is the point value of a cricket target ("20".."15", "BULL").
func CricketTargetValue(target string) int {
	if target == "BULL" {
		return 25
	}
	n, _ := strconv.Atoi(target)
	return n
}
