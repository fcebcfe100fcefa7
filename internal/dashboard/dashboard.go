// Package dashboard summarizes consultations for each Nation role. Every
// summary is computed from one snapshot of records against a single now.
package dashboard

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/pkg/formatting"
)

// Role selects the dashboard summary.
type Role string

const (
	RoleSimplified Role = "simplified"
	RoleAdmin      Role = "admin"
	RoleOfficer    Role = "officer"
	RoleLeadership Role = "leadership"
)

// ParseRole parses a role name. The empty string selects the simplified view.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RoleSimplified, nil
	case RoleSimplified, RoleAdmin, RoleOfficer, RoleLeadership:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// ProjectTypes is the display order of the project-type breakdown.
var ProjectTypes = []string{"oil_gas", "mining", "forestry", "infrastructure", "utilities", "other"}

const (
	upcomingLimit = 5
	recentLimit   = 10
	companyLimit  = 5
)

// Query selects and scopes a dashboard.
type Query struct {
	Role        Role
	OfficerID   string
	Search      string
	IncludeSent bool
}

// Dashboard is the response envelope. Exactly one summary is set.
type Dashboard struct {
	Role        Role        `json:"role"`
	GeneratedAt time.Time   `json:"generated_at"`
	Simplified  *Simplified `json:"simplified,omitempty"`
	Admin       *Admin      `json:"admin,omitempty"`
	Officer     *Officer    `json:"officer,omitempty"`
	Leadership  *Leadership `json:"leadership,omitempty"`
}

// Money is an amount in cents with its display form.
type Money struct {
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
}

func money(cents int64) Money {
	return Money{Cents: cents, Display: formatting.FormatCents(cents)}
}

// Breakdown counts consultations per decision. None and Pending are kept apart.
type Breakdown struct {
	Endorsed    int `json:"endorsed"`
	Conditional int `json:"conditional"`
	NotEndorsed int `json:"not_endorsed"`
	Pending     int `json:"pending"`
	None        int `json:"none"`
}

// Count is a labelled tally.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthCount is the number of consultations whose deadline falls in Month.
type MonthCount struct {
	Month string `json:"month"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Simplified is the email-centric review dashboard.
type Simplified struct {
	Active    int                 `json:"active"`
	Overdue   int                 `json:"overdue"`
	Urgent    int                 `json:"urgent"`
	EmailSent int                 `json:"email_sent"`
	Queue     []consultations.Row `json:"queue"`
}

// Admin is the administrative overview with fee totals.
type Admin struct {
	Total          int                 `json:"total"`
	ActionNeeded   int                 `json:"action_needed"`
	Overdue        int                 `json:"overdue"`
	Completed      int                 `json:"completed"`
	CompletionRate int                 `json:"completion_rate"`
	Decisions      Breakdown           `json:"decisions"`
	FeesCollected  Money               `json:"fees_collected"`
	FeesPending    Money               `json:"fees_pending"`
	Upcoming       []consultations.Row `json:"upcoming"`
	Consultations  []consultations.Row `json:"consultations"`
}

// Officer is the overview of one officer's assigned consultations.
type Officer struct {
	OfficerID      string              `json:"officer_id"`
	OfficerName    string              `json:"officer_name,omitempty"`
	Assigned       int                 `json:"assigned"`
	ActionNeeded   int                 `json:"action_needed"`
	Completed      int                 `json:"completed"`
	DueSoon        int                 `json:"due_soon"`
	CompletionRate int                 `json:"completion_rate"`
	Upcoming       []consultations.Row `json:"upcoming"`
	Pending        []consultations.Row `json:"pending"`
	Decided        []consultations.Row `json:"decided"`
}

// Leadership is the strategic overview.
type Leadership struct {
	Total          int                 `json:"total"`
	Active         int                 `json:"active"`
	Completed      int                 `json:"completed"`
	CompletionRate int                 `json:"completion_rate"`
	Revenue        Money               `json:"revenue"`
	Decisions      Breakdown           `json:"decisions"`
	ProjectTypes   []Count             `json:"project_types"`
	TopCompanies   []Count             `json:"top_companies"`
	Upcoming       []consultations.Row `json:"upcoming"`
	MonthlyVolume  []MonthCount        `json:"monthly_volume"`
	Recent         []consultations.Row `json:"recent"`
}

// Build computes the dashboard selected by q over records at now.
func Build(q Query, records []consultations.Consultation, now time.Time, checker consultations.InFlightChecker) (*Dashboard, error) {
	d := &Dashboard{Role: q.Role, GeneratedAt: now}

	switch q.Role {
	case RoleSimplified, "":
		d.Role = RoleSimplified
		d.Simplified = BuildSimplified(records, q.Search, q.IncludeSent, now, checker)
	case RoleAdmin:
		d.Admin = BuildAdmin(records, q.Search, now, checker)
	case RoleOfficer:
		if q.OfficerID == "" {
			return nil, ErrOfficerRequired
		}
		d.Officer = BuildOfficer(records, q.OfficerID, q.Search, now, checker)
	case RoleLeadership:
		d.Leadership = BuildLeadership(records, now, checker)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, q.Role)
	}

	return d, nil
}

// BuildSimplified counts unsent consultations by DaysRemaining: overdue at
// zero or fewer days and urgent within DueSoonDays.
func BuildSimplified(records []consultations.Consultation, search string, includeSent bool, now time.Time, checker consultations.InFlightChecker) *Simplified {
	s := &Simplified{}
	for _, c := range records {
		if c.EmailSent {
			s.EmailSent++
			continue
		}
		s.Active++

		switch days := consultations.DaysRemaining(c.Deadline, now); {
		case days <= 0:
			s.Overdue++
		case days <= consultations.DueSoonDays:
			s.Urgent++
		}
	}

	queue := consultations.ReviewQueue(records, search, includeSent, now)
	s.Queue = consultations.AnnotateAll(queue, now, checker)
	return s
}

// BuildAdmin summarizes every consultation with fee totals by payment status.
func BuildAdmin(records []consultations.Consultation, search string, now time.Time, checker consultations.InFlightChecker) *Admin {
	a := &Admin{
		Total:     len(records),
		Decisions: breakdown(records),
	}

	var collected, pending int64
	for _, c := range records {
		if c.Resolved() {
			a.Completed++
		}
		if actionNeeded(c, now) {
			a.ActionNeeded++
		}
		if consultations.ClassifyDecisionStatus(c.Decision, c.Deadline, now) == consultations.StatusOverdue {
			a.Overdue++
		}
		switch c.PaymentStatus {
		case consultations.PaymentPaid:
			collected += c.ConsultationFee
		case consultations.PaymentPending:
			pending += c.ConsultationFee
		}
	}

	a.CompletionRate = rate(a.Completed, a.Total)
	a.FeesCollected = money(collected)
	a.FeesPending = money(pending)
	a.Upcoming = consultations.AnnotateAll(upcoming(records, now, 0), now, checker)
	a.Consultations = consultations.AnnotateAll(byDeadline(matching(records, search)), now, checker)
	return a
}

// BuildOfficer summarizes the consultations assigned to officerID.
func BuildOfficer(records []consultations.Consultation, officerID, search string, now time.Time, checker consultations.InFlightChecker) *Officer {
	o := &Officer{OfficerID: officerID}

	var mine []consultations.Consultation
	for _, c := range records {
		if c.AssignedOfficer == nil || *c.AssignedOfficer != officerID {
			continue
		}
		if o.OfficerName == "" && c.OfficerName != nil {
			o.OfficerName = *c.OfficerName
		}
		mine = append(mine, c)
	}

	o.Assigned = len(mine)

	var pending, decided []consultations.Consultation
	for _, c := range mine {
		if c.Resolved() {
			o.Completed++
		}
		if actionNeeded(c, now) {
			o.ActionNeeded++
		}
		switch consultations.ClassifyDecisionStatus(c.Decision, c.Deadline, now) {
		case consultations.StatusDueSoon, consultations.StatusOverdue:
			o.DueSoon++
		}
		if !c.Matches(search) {
			continue
		}
		if c.Resolved() {
			decided = append(decided, c)
		} else {
			pending = append(pending, c)
		}
	}

	o.CompletionRate = rate(o.Completed, o.Assigned)
	o.Upcoming = consultations.AnnotateAll(upcoming(mine, now, 0), now, checker)
	o.Pending = consultations.AnnotateAll(byDeadline(pending), now, checker)
	o.Decided = consultations.AnnotateAll(byDeadline(decided), now, checker)
	return o
}

// BuildLeadership summarizes volume, outcomes, and revenue across all consultations.
func BuildLeadership(records []consultations.Consultation, now time.Time, checker consultations.InFlightChecker) *Leadership {
	l := &Leadership{
		Total:     len(records),
		Decisions: breakdown(records),
	}

	var revenue int64
	types := make(map[string]int)
	companies := make(map[string]int)
	months := make(map[string]int)

	for _, c := range records {
		if c.Resolved() {
			l.Completed++
		} else {
			l.Active++
		}
		if c.PaymentStatus == consultations.PaymentPaid {
			revenue += c.ConsultationFee
		}
		types[c.ProjectType]++
		companies[c.Company]++
		months[c.Deadline.Format("2006-01")]++
	}

	l.CompletionRate = rate(l.Completed, l.Total)
	l.Revenue = money(revenue)
	l.ProjectTypes = projectTypes(types)
	l.TopCompanies = topCounts(companies, companyLimit)
	l.MonthlyVolume = monthly(months)
	l.Upcoming = consultations.AnnotateAll(upcoming(records, now, upcomingLimit), now, checker)

	recent := slices.Clone(records)
	slices.SortStableFunc(recent, func(a, b consultations.Consultation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	l.Recent = consultations.AnnotateAll(recent, now, checker)
	return l
}

// actionNeeded reports an undecided consultation whose urgency is anything
// other than normal.
func actionNeeded(c consultations.Consultation, now time.Time) bool {
	switch consultations.ClassifyUrgency(c.Decision, c.Deadline, now) {
	case consultations.UrgencyOverdue, consultations.UrgencyDueToday, consultations.UrgencyActionRequired:
		return true
	default:
		return false
	}
}

func rate(part, total int) int {
	if total == 0 {
		return 0
	}
	return (part*100 + total/2) / total
}

func breakdown(records []consultations.Consultation) Breakdown {
	var b Breakdown
	for _, c := range records {
		switch c.Decision {
		case consultations.DecisionEndorse:
			b.Endorsed++
		case consultations.DecisionConditional:
			b.Conditional++
		case consultations.DecisionNotEndorsed:
			b.NotEndorsed++
		case consultations.DecisionPending:
			b.Pending++
		default:
			b.None++
		}
	}
	return b
}

// upcoming returns due_soon and overdue consultations by deadline. A positive
// limit truncates the result.
func upcoming(records []consultations.Consultation, now time.Time, limit int) []consultations.Consultation {
	var out []consultations.Consultation
	for _, c := range records {
		switch consultations.ClassifyDecisionStatus(c.Decision, c.Deadline, now) {
		case consultations.StatusDueSoon, consultations.StatusOverdue:
			out = append(out, c)
		}
	}
	out = byDeadline(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func matching(records []consultations.Consultation, search string) []consultations.Consultation {
	out := make([]consultations.Consultation, 0, len(records))
	for _, c := range records {
		if c.Matches(search) {
			out = append(out, c)
		}
	}
	return out
}

func byDeadline(records []consultations.Consultation) []consultations.Consultation {
	slices.SortStableFunc(records, func(a, b consultations.Consultation) int {
		return a.Deadline.Compare(b.Deadline.Time)
	})
	return records
}

func projectTypes(counts map[string]int) []Count {
	out := make([]Count, 0, len(ProjectTypes))
	known := make(map[string]bool, len(ProjectTypes))
	for _, t := range ProjectTypes {
		known[t] = true
		out = append(out, Count{Name: t, Count: counts[t]})
	}

	var extra []string
	for t := range counts {
		if !known[t] {
			extra = append(extra, t)
		}
	}
	slices.Sort(extra)
	for _, t := range extra {
		out = append(out, Count{Name: t, Count: counts[t]})
	}
	return out
}

func topCounts(counts map[string]int, limit int) []Count {
	out := make([]Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, Count{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func monthly(counts map[string]int) []MonthCount {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]MonthCount, 0, len(keys))
	for _, k := range keys {
		label := k
		if t, err := time.Parse("2006-01", k); err == nil {
			label = t.Format("Jan 2006")
		}
		out = append(out, MonthCount{Month: k, Label: label, Count: counts[k]})
	}
	return out
}
