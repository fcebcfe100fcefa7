package calendar

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"

	"github.com/JaimeStill/consult/internal/consultations"
)

// MonthInlineLimit is the number of consultations shown inline in a month cell.
const MonthInlineLimit = 2

var mondayFirst = &now.Config{WeekStartDay: time.Monday}

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start consultations.Date `json:"start"`
	End   consultations.Date `json:"end"`
}

// Len returns the number of days in the range.
func (r DateRange) Len() int {
	return int(r.End.Sub(r.Start.Time)/(24*time.Hour)) + 1
}

// Days returns every date of the range in order.
func (r DateRange) Days() []consultations.Date {
	days := make([]consultations.Date, 0, r.Len())
	for d := r.Start; !d.After(r.End.Time); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether d falls within the range.
func (r DateRange) Contains(d consultations.Date) bool {
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// Range computes the visible dates of s. The week view is the Monday-to-Sunday
// week of the anchor; the month view pads the anchor's month out to full weeks.
func Range(s State) DateRange {
	n := mondayFirst.With(s.Anchor)

	if s.View == ViewMonth {
		start := mondayFirst.With(n.BeginningOfMonth()).BeginningOfWeek()
		end := mondayFirst.With(n.EndOfMonth()).EndOfWeek()
		return DateRange{Start: consultations.DateOf(start), End: consultations.DateOf(end)}
	}

	return DateRange{
		Start: consultations.DateOf(n.BeginningOfWeek()),
		End:   consultations.DateOf(n.EndOfWeek()),
	}
}

// Label returns the heading for s: "Week 11: Mar 9 - Mar 15, 2026" for weeks,
// "March 2026" for months.
func Label(s State) string {
	if s.View == ViewMonth {
		return s.Anchor.Format("January 2006")
	}

	r := Range(s)
	_, week := s.Anchor.ISOWeek()
	return fmt.Sprintf("Week %d: %s - %s", week, r.Start.Format("Jan 2"), r.End.Format("Jan 2, 2006"))
}

// Buckets maps a deadline date key to the consultations due that day.
type Buckets map[string][]consultations.Consultation

// Bucket groups records by deadline date, preserving input order within a day.
// Every record lands in exactly one bucket.
func Bucket(records []consultations.Consultation) Buckets {
	b := make(Buckets)
	for _, c := range records {
		key := c.Deadline.Key()
		b[key] = append(b[key], c)
	}
	return b
}

// Day returns the consultations due on d. The result is never nil.
func (b Buckets) Day(d consultations.Date) []consultations.Consultation {
	if items, ok := b[d.Key()]; ok {
		return items
	}
	return []consultations.Consultation{}
}

// Total returns the number of bucketed consultations.
func (b Buckets) Total() int {
	n := 0
	for _, items := range b {
		n += len(items)
	}
	return n
}

// Card is a consultation as placed on the calendar.
type Card struct {
	consultations.Consultation
	Urgency       consultations.Urgency `json:"urgency"`
	DaysRemaining int                   `json:"days_remaining"`
	DecisionLabel string                `json:"decision_label"`
}

// Cell is one day of the grid. Consultations holds every record due that day;
// Inline is the capped subset for display and Overflow counts the rest.
type Cell struct {
	Date           consultations.Date `json:"date"`
	Key            string             `json:"key"`
	IsToday        bool               `json:"is_today"`
	InCurrentMonth bool               `json:"in_current_month"`
	Consultations  []Card             `json:"consultations"`
	Inline         []Card             `json:"inline"`
	Overflow       int                `json:"overflow"`
}

// Grid is the renderable calendar for a State.
type Grid struct {
	View       View               `json:"view"`
	Anchor     consultations.Date `json:"anchor"`
	Label      string             `json:"label"`
	Range      DateRange          `json:"range"`
	Weeks      [][]Cell           `json:"weeks"`
	Total      int                `json:"total"`
	PrevAnchor consultations.Date `json:"prev_anchor"`
	NextAnchor consultations.Date `json:"next_anchor"`
}

// Build lays out records for s as rows of seven cells, annotating each card
// with its urgency at now. Records outside the visible range are not placed.
// The anchor is read in now's location so the range and today agree.
func Build(s State, records []consultations.Consultation, now time.Time) Grid {
	s.Anchor = s.Anchor.In(now.Location())
	r := Range(s)
	buckets := Bucket(records)
	today := consultations.DateOf(now)
	_, anchorMonth, _ := s.Anchor.Date()

	days := r.Days()
	weeks := make([][]Cell, 0, len(days)/7)
	total := 0

	for i := 0; i < len(days); i += 7 {
		row := make([]Cell, 0, 7)
		for _, d := range days[i : i+7] {
			cards := toCards(buckets.Day(d), now)
			total += len(cards)

			cell := Cell{
				Date:           d,
				Key:            d.Key(),
				IsToday:        d.Equal(today.Time),
				InCurrentMonth: d.Month() == anchorMonth,
				Consultations:  cards,
				Inline:         cards,
			}

			if s.View == ViewMonth && len(cards) > MonthInlineLimit {
				cell.Inline = cards[:MonthInlineLimit]
				cell.Overflow = len(cards) - MonthInlineLimit
			}

			row = append(row, cell)
		}
		weeks = append(weeks, row)
	}

	return Grid{
		View:       s.View,
		Anchor:     consultations.DateOf(s.Anchor),
		Label:      Label(s),
		Range:      r,
		Weeks:      weeks,
		Total:      total,
		PrevAnchor: consultations.DateOf(s.Prev().Anchor),
		NextAnchor: consultations.DateOf(s.Next().Anchor),
	}
}

func toCards(items []consultations.Consultation, now time.Time) []Card {
	cards := make([]Card, len(items))
	for i, c := range items {
		cards[i] = Card{
			Consultation:  c,
			Urgency:       consultations.ClassifyUrgency(c.Decision, c.Deadline, now),
			DaysRemaining: consultations.DaysRemaining(c.Deadline, now),
			DecisionLabel: c.Decision.Label(),
		}
	}
	return cards
}
