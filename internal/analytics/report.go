package analytics

import (
	"sort"
	"time"
)

// FailurePreviewLimit bounds how many parse failures a report surfaces in
// its preview; the total count is always reported.
const FailurePreviewLimit = 5

const dayKeyLayout = "2006-01-02"

// ParseFailure records a row whose timestamp could not be parsed. Row is
// the 1-based spreadsheet row (input offset plus the header row), Raw the
// original timestamp text, ID the row's identifying field if present.
type ParseFailure struct {
	Row int    `json:"row"`
	Raw string `json:"raw"`
	ID  string `json:"id"`
}

// DayGroup holds the sessions whose start time falls on one calendar date,
// sorted ascending by start time.
type DayGroup struct {
	Date     time.Time  `json:"date"`
	Sessions []*Session `json:"sessions"`
}

// Report is the result of one analysis run over a batch of records.
// UniqueDays counts distinct calendar dates with at least one parsed event,
// which is not the same thing as the number of sessions: several sessions
// can land on a single date.
type Report struct {
	TotalRecords   int            `json:"total_records"`
	ParsedRecords  int            `json:"parsed_records"`
	UniqueDays     int            `json:"unique_days"`
	TotalSessions  int            `json:"total_sessions"`
	MeanPerSession float64        `json:"mean_per_session"`
	Largest        *Session       `json:"largest,omitempty"`
	Smallest       *Session       `json:"smallest,omitempty"`
	Days           []DayGroup     `json:"days"`
	Failures       []ParseFailure `json:"failures,omitempty"`
}

// FailurePreview returns at most FailurePreviewLimit parse failures, in
// input order.
func (r *Report) FailurePreview() []ParseFailure {
	if len(r.Failures) <= FailurePreviewLimit {
		return r.Failures
	}
	return r.Failures[:FailurePreviewLimit]
}

// Analyze reconstructs sessions from a flat batch of records and derives
// the summary statistics. Unparseable rows are excluded from session
// construction and reported as failures; they never abort the run. An
// empty batch yields an empty report.
func Analyze(records []Record, gap time.Duration) *Report {
	report := &Report{TotalRecords: len(records)}

	days := make(map[string]struct{})
	events := make([]Event, 0, len(records))

	for i, rec := range records {
		t, ok := ParseTimestamp(rec.Timestamp)
		if !ok {
			report.Failures = append(report.Failures, ParseFailure{
				Row: i + 2, // 1-based rows plus the header row
				Raw: rec.Timestamp,
				ID:  rec.ID,
			})
			continue
		}
		days[t.Format(dayKeyLayout)] = struct{}{}
		events = append(events, Event{Time: t, Record: rec})
	}

	report.ParsedRecords = len(events)
	report.UniqueDays = len(days)

	sessions := BuildSessions(events, gap)
	report.TotalSessions = len(sessions)
	if len(sessions) == 0 {
		return report
	}

	total := 0
	for _, s := range sessions {
		total += s.Count()
		// Strict comparisons keep the first-emitted session on ties.
		if report.Largest == nil || s.Count() > report.Largest.Count() {
			report.Largest = s
		}
		if report.Smallest == nil || s.Count() < report.Smallest.Count() {
			report.Smallest = s
		}
	}
	report.MeanPerSession = float64(total) / float64(len(sessions))

	report.Days = groupByDay(sessions)

	return report
}

// groupByDay buckets sessions by the calendar date of their start time.
// Sessions within a date are already in ascending start order because
// BuildSessions emits them sorted; dates are listed most recent first.
func groupByDay(sessions []*Session) []DayGroup {
	byDay := make(map[string]*DayGroup)
	for _, s := range sessions {
		key := s.Date.Format(dayKeyLayout)
		g, ok := byDay[key]
		if !ok {
			g = &DayGroup{Date: s.Date}
			byDay[key] = g
		}
		g.Sessions = append(g.Sessions, s)
	}

	groups := make([]DayGroup, 0, len(byDay))
	for _, g := range byDay {
		sort.SliceStable(g.Sessions, func(i, j int) bool {
			return g.Sessions[i].Start.Before(g.Sessions[j].Start)
		})
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date.After(groups[j].Date)
	})

	return groups
}
