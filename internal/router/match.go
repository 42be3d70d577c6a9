package router

import (
	"errors"
	"fmt"
	"strings"
)

// Pattern validation errors.
var (
	// ErrEmptyPattern is returned when an empty pattern is registered.
	ErrEmptyPattern = errors.New("router: pattern cannot be empty")

	// ErrInvalidPattern is returned when a pattern misuses wildcards.
	ErrInvalidPattern = errors.New("router: invalid pattern")
)

// Match reports whether an MQTT topic matches a subscription pattern.
//
// Wildcard semantics follow MQTT:
//   - "+" matches exactly one "/"-delimited level
//   - "#" matches the remainder of the topic (zero or more levels) and is
//     only valid as the final pattern segment
//
// Literal segments compare case-sensitively. An empty topic never matches.
//
// Examples:
//
//	Match("a/+/c", "a/b/c")   // true
//	Match("a/+/c", "a/b/x/c") // false
//	Match("a/#", "a")         // true
//	Match("a/#", "a/b/c")     // true
func Match(pattern, topic string) bool {
	if pattern == "" || topic == "" {
		return false
	}

	pSegs := strings.Split(pattern, "/")
	tSegs := strings.Split(topic, "/")

	for i, pSeg := range pSegs {
		if pSeg == "#" {
			// "#" covers the parent level too: "a/#" matches "a".
			return i == len(pSegs)-1 && len(tSegs) >= i
		}

		if i >= len(tSegs) {
			return false
		}

		if pSeg != "+" && pSeg != tSegs[i] {
			return false
		}
	}

	return len(pSegs) == len(tSegs)
}

// ValidatePattern checks that a subscription pattern is well-formed.
//
// Rules:
//   - pattern must be non-empty
//   - "#" may only appear as the entire final segment
//   - "+" may only appear as an entire segment
//
// Returns:
//   - error: ErrEmptyPattern or ErrInvalidPattern (wrapped), nil if valid
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return ErrEmptyPattern
	}

	segs := strings.Split(pattern, "/")
	for i, seg := range segs {
		switch {
		case seg == "#":
			if i != len(segs)-1 {
				return fmt.Errorf("%w: %q ('#' must be the final segment)", ErrInvalidPattern, pattern)
			}
		case strings.Contains(seg, "#"):
			return fmt.Errorf("%w: %q ('#' must occupy a whole segment)", ErrInvalidPattern, pattern)
		case seg != "+" && strings.Contains(seg, "+"):
			return fmt.Errorf("%w: %q ('+' must occupy a whole segment)", ErrInvalidPattern, pattern)
		}
	}

	return nil
}
