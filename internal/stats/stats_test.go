package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestResolveWindowExplicit(t *testing.T) {
	w := ResolveWindow("2024-01", "2024-03", time.Now())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.From())
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), w.To())
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, w.Months())
}

func TestResolveWindowDefaultsToLastSixMonths(t *testing.T) {
	now := at(2025, 2, 17)
	for _, tc := range []struct{ start, end string }{
		{"", ""},
		{"2024-01", ""},
		{"garbage", "2024-03"},
		{"2024-13", "2024-14"},
	} {
		w := ResolveWindow(tc.start, tc.end, now)
		assert.Equal(t, []string{"2024-09", "2024-10", "2024-11", "2024-12", "2025-01", "2025-02"}, w.Months(), "%q..%q", tc.start, tc.end)
	}
}

func TestResolveWindowSwapsReversedBounds(t *testing.T) {
	w := ResolveWindow("2024-05", "2024-02", time.Now())
	assert.Equal(t, []string{"2024-02", "2024-03", "2024-04", "2024-05"}, w.Months())
}

func TestAggregateEmptyMonthKeepsCumulative(t *testing.T) {
	w := ResolveWindow("2024-01", "2024-03", time.Now())
	needs := []Record{
		{CreatedAt: at(2024, 1, 5), Region: "north"},
		{CreatedAt: at(2024, 1, 20), Region: "south"},
		{CreatedAt: at(2024, 3, 2), Region: "north"},
	}
	accepted := []Record{
		{CreatedAt: at(2024, 3, 9), Region: "north"},
	}

	res := Aggregate(w, needs, accepted)

	require.Len(t, res.List, 3)
	assert.Equal(t, Row{Month: "2024-01", Region: "north", MonthNeedCount: 1, CumulativeNeedCount: 2}, res.List[0])
	assert.Equal(t, Row{Month: "2024-01", Region: "south", MonthNeedCount: 1, CumulativeNeedCount: 2}, res.List[1])
	assert.Equal(t, Row{
		Month: "2024-03", Region: "north",
		MonthNeedCount: 1, MonthServiceSuccessCount: 1,
		CumulativeNeedCount: 3, CumulativeServiceSuccessCount: 1,
	}, res.List[2])
	assert.Equal(t, int64(3), res.TotalNeed)
	assert.Equal(t, int64(1), res.TotalServiceSuccess)
}

func TestAggregateNoRecords(t *testing.T) {
	res := Aggregate(ResolveWindow("2024-01", "2024-03", time.Now()), nil, nil)
	assert.NotNil(t, res.List)
	assert.Empty(t, res.List)
	assert.Zero(t, res.TotalNeed)
	assert.Zero(t, res.TotalServiceSuccess)
}

func TestAggregateIgnoresRecordsOutsideWindow(t *testing.T) {
	w := ResolveWindow("2024-02", "2024-02", time.Now())
	needs := []Record{
		{CreatedAt: time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), Region: "x"},
		{CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Region: "x"},
		{CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Region: "x"},
	}
	res := Aggregate(w, needs, nil)
	require.Len(t, res.List, 1)
	assert.Equal(t, int64(1), res.List[0].MonthNeedCount)
	assert.Equal(t, int64(1), res.TotalNeed)
}

func TestAggregateServiceOnlyBucket(t *testing.T) {
	w := ResolveWindow("2024-01", "2024-01", time.Now())
	res := Aggregate(w, nil, []Record{{CreatedAt: at(2024, 1, 3), Region: ""}})
	require.Len(t, res.List, 1)
	assert.Equal(t, "", res.List[0].Region)
	assert.Equal(t, int64(0), res.List[0].MonthNeedCount)
	assert.Equal(t, int64(1), res.List[0].MonthServiceSuccessCount)
}

type fakeSource struct {
	needs, services []Record
	err             error
	gotFrom, gotTo  time.Time
	gotKeyword      string
}

func (f *fakeSource) NeedRecords(_ context.Context, from, to time.Time, kw string) ([]Record, error) {
	f.gotFrom, f.gotTo, f.gotKeyword = from, to, kw
	return f.needs, f.err
}

func (f *fakeSource) AcceptedServiceRecords(_ context.Context, _, _ time.Time, _ string) ([]Record, error) {
	return f.services, nil
}

func TestEngineRun(t *testing.T) {
	src := &fakeSource{needs: []Record{{CreatedAt: at(2024, 3, 1), Region: "east"}}}
	e := NewEngine(src)

	res, err := e.Run(context.Background(), Query{StartMonth: "2024-01", EndMonth: "2024-03", RegionKeyword: "  ea "})
	require.NoError(t, err)
	assert.Equal(t, "ea", src.gotKeyword)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), src.gotFrom)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), src.gotTo)
	require.Len(t, res.List, 1)
	assert.Equal(t, int64(1), res.List[0].CumulativeNeedCount)
}

func TestEngineRunDefaultWindowUsesClock(t *testing.T) {
	src := &fakeSource{}
	e := NewEngine(src)
	e.now = func() time.Time { return at(2024, 6, 15) }

	_, err := e.Run(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), src.gotFrom)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), src.gotTo)
}

func TestEngineRunPropagatesErrors(t *testing.T) {
	e := NewEngine(&fakeSource{err: errors.New("boom")})
	_, err := e.Run(context.Background(), Query{})
	assert.Error(t, err)
}
