package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// weekPrefix is the canonical prefix of a week identifier.
const weekPrefix = "week-"

// ErrInvalidWeek is returned when a string cannot be read as a week identifier.
var ErrInvalidWeek = errors.New("invalid week identifier")

// WeekID identifies a contest week partition, e.g. "week-2".
type WeekID string

// DefaultWeeks is the closed set of partitions used when nothing is configured.
var DefaultWeeks = []WeekID{"week-1", "week-2", "week-3"}

// ParseWeekID accepts "week-N", "Week-N" or a bare "N" and returns the
// canonical "week-N" form.
func ParseWeekID(s string) (WeekID, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, weekPrefix)
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeek, s)
	}
	return WeekID(weekPrefix + strconv.Itoa(n)), nil
}

// Number returns the numeric part of the week, or 0 if the id is malformed.
func (w WeekID) Number() int {
	n, err := strconv.Atoi(strings.TrimPrefix(string(w), weekPrefix))
	if err != nil {
		return 0
	}
	return n
}

func (w WeekID) String() string { return string(w) }

// WeekSet is a lookup over the configured week partitions.
type WeekSet struct {
	order []WeekID
	index map[WeekID]struct{}
}

// NewWeekSet builds a set preserving the given order. Duplicates are ignored.
func NewWeekSet(weeks []WeekID) WeekSet {
	ws := WeekSet{index: make(map[WeekID]struct{}, len(weeks))}
	for _, w := range weeks {
		if _, ok := ws.index[w]; ok {
			continue
		}
		ws.index[w] = struct{}{}
		ws.order = append(ws.order, w)
	}
	return ws
}

// Contains reports whether w is a configured week.
func (s WeekSet) Contains(w WeekID) bool {
	_, ok := s.index[w]
	return ok
}

// All returns the weeks in configured order.
func (s WeekSet) All() []WeekID {
	out := make([]WeekID, len(s.order))
	copy(out, s.order)
	return out
}

// Resolve parses s and checks it against the set.
func (s WeekSet) Resolve(raw string) (WeekID, error) {
	w, err := ParseWeekID(raw)
	if err != nil {
		return "", err
	}
	if !s.Contains(w) {
		return "", fmt.Errorf("%w: %q is not an open week", ErrInvalidWeek, raw)
	}
	return w, nil
}

// Theme is the static prompt of a contest week.
type Theme struct {
	Title  string
	Prompt string
}
