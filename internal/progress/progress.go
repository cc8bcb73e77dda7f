// Package progress normalizes user-supplied completion percentages.
package progress

import (
	"strconv"
	"strings"
)

const (
	Min = 0
	Max = 100
)

// Clamp parses raw as an integer and bounds it to [Min, Max]. Input that
// does not parse keeps the previous value.
func Clamp(raw string, previous int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Bound(previous)
	}
	return Bound(v)
}

func Bound(v int) int {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}

// Offset is the remaining share, drawn as the empty part of a progress bar.
func Offset(v int) int {
	return Max - Bound(v)
}
