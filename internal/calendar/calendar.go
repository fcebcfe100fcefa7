// Package calendar aggregates consultations into week and month grids keyed by
// deadline date, with unbounded prev/next/today navigation.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// View selects the calendar granularity.
type View string

const (
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

// ParseView parses a view name. The empty string selects the week view.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewWeek:
		return ViewWeek, nil
	case ViewMonth:
		return ViewMonth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
	}
}

// Navigation actions accepted by Navigate.
const (
	NavPrev  = "prev"
	NavNext  = "next"
	NavToday = "today"
)

// State is the navigation position of a calendar: the anchor date and the view.
type State struct {
	Anchor time.Time `json:"anchor"`
	View   View      `json:"view"`
}

// Next moves forward one week or one calendar month.
func (s State) Next() State {
	return s.shift(1)
}

// Prev moves back one week or one calendar month.
func (s State) Prev() State {
	return s.shift(-1)
}

// Today moves the anchor to now, keeping the view.
func (s State) Today(now time.Time) State {
	s.Anchor = now
	return s
}

// SetView changes the view without moving the anchor.
func (s State) SetView(v View) State {
	s.View = v
	return s
}

// Navigate applies a named action. An empty action leaves the state unchanged.
func (s State) Navigate(action string, now time.Time) (State, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "":
		return s, nil
	case NavPrev:
		return s.Prev(), nil
	case NavNext:
		return s.Next(), nil
	case NavToday:
		return s.Today(now), nil
	default:
		return s, fmt.Errorf("%w: %q", ErrInvalidNavigation, action)
	}
}

func (s State) shift(n int) State {
	if s.View == ViewMonth {
		s.Anchor = addMonths(s.Anchor, n)
	} else {
		s.Anchor = s.Anchor.AddDate(0, 0, 7*n)
	}
	return s
}

// addMonths adds n calendar months, clamping the day to the end of the target
// month so that Jan 31 + 1 month is the last day of February.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	first := time.Date(y, m+time.Month(n), 1, hh, mm, ss, t.Nanosecond(), t.Location())
	last := daysIn(first.Year(), first.Month(), t.Location())
	if d > last {
		d = last
	}

	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}
