// Package stats computes monthly need and accepted-offer counts per region,
// with running totals across the requested month window.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	monthLayout   = "2006-01"
	defaultMonths = 6
)

// Query is the caller's statistics request. Months are "YYYY-MM".
type Query struct {
	StartMonth    string `json:"startMonth" form:"startMonth" query:"startMonth"`
	EndMonth      string `json:"endMonth" form:"endMonth" query:"endMonth"`
	RegionKeyword string `json:"regionKeyword" form:"regionKeyword" query:"regionKeyword"`
}

// Window is an inclusive range of calendar months, stored as the first instant of each month (UTC)
type Window struct {
	Start time.Time
	End   time.Time
}

// From returns the inclusive lower bound of the time range
func (w Window) From() time.Time {
	return w.Start
}

// To returns the exclusive upper bound: the start of the month after End
func (w Window) To() time.Time {
	return w.End.AddDate(0, 1, 0)
}

// Months lists every month key in the window in chronological order
func (w Window) Months() []string {
	var months []string
	for m := w.Start; !m.After(w.End); m = m.AddDate(0, 1, 0) {
		months = append(months, m.Format(monthLayout))
	}
	return months
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ResolveWindow parses the requested months. When either bound is missing or
// unparsable the window is the six months ending with now's month.
func ResolveWindow(start, end string, now time.Time) Window {
	s, errS := time.Parse(monthLayout, strings.TrimSpace(start))
	e, errE := time.Parse(monthLayout, strings.TrimSpace(end))
	if errS != nil || errE != nil {
		last := monthStart(now)
		return Window{Start: last.AddDate(0, -(defaultMonths - 1), 0), End: last}
	}
	if s.After(e) {
		s, e = e, s
	}
	return Window{Start: s, End: e}
}

// Record is one counted event: a need creation or an accepted offer
type Record struct {
	CreatedAt time.Time
	Region    string
}

// Row holds the counts for one (month, region) pair
type Row struct {
	Month                         string `json:"month"`
	Region                        string `json:"region"`
	MonthNeedCount                int64  `json:"monthNeedCount"`
	MonthServiceSuccessCount      int64  `json:"monthServiceSuccessCount"`
	CumulativeNeedCount           int64  `json:"cumulativeNeedCount"`
	CumulativeServiceSuccessCount int64  `json:"cumulativeServiceSuccessCount"`
}

// Result is the aggregation output
type Result struct {
	List                []Row `json:"list"`
	TotalNeed           int64 `json:"totalNeed"`
	TotalServiceSuccess int64 `json:"totalServiceSuccess"`
}

type bucket struct {
	month  string
	region string
}

// Aggregate groups the records by month and region. Cumulative totals span all
// regions and advance through every month of the window, including empty ones.
func Aggregate(w Window, needs, accepted []Record) Result {
	needCounts := group(w, needs)
	serviceCounts := group(w, accepted)

	keys := make(map[bucket]struct{}, len(needCounts)+len(serviceCounts))
	for k := range needCounts {
		keys[k] = struct{}{}
	}
	for k := range serviceCounts {
		keys[k] = struct{}{}
	}

	result := Result{List: []Row{}}
	if len(keys) == 0 {
		return result
	}

	needPerMonth := map[string]int64{}
	servicePerMonth := map[string]int64{}
	for k, n := range needCounts {
		needPerMonth[k.month] += n
	}
	for k, n := range serviceCounts {
		servicePerMonth[k.month] += n
	}

	type running struct{ need, service int64 }
	cumulative := make(map[string]running)
	var acc running
	for _, m := range w.Months() {
		acc.need += needPerMonth[m]
		acc.service += servicePerMonth[m]
		cumulative[m] = acc
	}

	for k := range keys {
		c := cumulative[k.month]
		row := Row{
			Month:                         k.month,
			Region:                        k.region,
			MonthNeedCount:                needCounts[k],
			MonthServiceSuccessCount:      serviceCounts[k],
			CumulativeNeedCount:           c.need,
			CumulativeServiceSuccessCount: c.service,
		}
		result.List = append(result.List, row)
		result.TotalNeed += row.MonthNeedCount
		result.TotalServiceSuccess += row.MonthServiceSuccessCount
	}

	sort.Slice(result.List, func(i, j int) bool {
		a, b := result.List[i], result.List[j]
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Region < b.Region
	})
	return result
}

func group(w Window, records []Record) map[bucket]int64 {
	from, to := w.From(), w.To()
	counts := make(map[bucket]int64)
	for _, r := range records {
		t := r.CreatedAt.UTC()
		if t.Before(from) || !t.Before(to) {
			continue
		}
		counts[bucket{month: t.Format(monthLayout), region: r.Region}]++
	}
	return counts
}

// Source provides the records that fall in [from, to)
type Source interface {
	NeedRecords(ctx context.Context, from, to time.Time, regionKeyword string) ([]Record, error)
	AcceptedServiceRecords(ctx context.Context, from, to time.Time, regionKeyword string) ([]Record, error)
}

// Engine answers statistics queries from a Source
type Engine struct {
	source Source
	now    func() time.Time
}

// NewEngine creates an Engine reading from source
func NewEngine(source Source) *Engine {
	return &Engine{source: source, now: time.Now}
}

// Run resolves the window, fetches matching records and aggregates them
func (e *Engine) Run(ctx context.Context, q Query) (Result, error) {
	w := ResolveWindow(q.StartMonth, q.EndMonth, e.now())
	keyword := strings.TrimSpace(q.RegionKeyword)

	needs, err := e.source.NeedRecords(ctx, w.From(), w.To(), keyword)
	if err != nil {
		return Result{}, fmt.Errorf("load need records: %w", err)
	}
	accepted, err := e.source.AcceptedServiceRecords(ctx, w.From(), w.To(), keyword)
	if err != nil {
		return Result{}, fmt.Errorf("load service records: %w", err)
	}
	return Aggregate(w, needs, accepted), nil
}
