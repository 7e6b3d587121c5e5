package aggregator

import (
	"fmt"
	"time"

	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/penwyp/go-runalyze/internal/core/timeline"
	"github.com/penwyp/go-runalyze/internal/util"
)

// Aggregator rolls one numeric activity field up per calendar day.
type Aggregator struct {
	field     string
	dateField string
	reduce    string
	location  *time.Location
}

// DayStats holds the running figures of one day or period. Days without
// activities keep the zero value. Count tallies activities, Values only
// those with a number in the field.
type DayStats struct {
	Count  int     `json:"count"`
	Values int     `json:"values"`
	Sum    float64 `json:"sum"`
	Max    float64 `json:"max"`
}

// PeriodData is one row of a rollup report.
type PeriodData struct {
	Period     string    `json:"period"`
	Start      time.Time `json:"start"`
	Days       int       `json:"days"`
	Activities int       `json:"activities"`
	Value      float64   `json:"value"`
}

// Summary describes the whole range of a rollup.
type Summary struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	Days          int       `json:"days"`
	ActiveDays    int       `json:"activeDays"`
	Activities    int       `json:"activities"`
	Skipped       int       `json:"skipped"`
	Value         float64   `json:"value"`
	LongestStreak int       `json:"longestStreak"`
	LongestGap    int       `json:"longestGap"`
}

// NewAggregator creates an Aggregator of field using the named reducer.
func NewAggregator(field, reduce string, location *time.Location) (*Aggregator, error) {
	switch reduce {
	case model.ReduceSum, model.ReduceMax, model.ReduceCount, model.ReduceAvg:
	default:
		return nil, fmt.Errorf("unknown reducer %q (expected sum, max, count or avg)", reduce)
	}
	if field == "" {
		return nil, fmt.Errorf("field must not be empty")
	}
	if location == nil {
		location = time.Local
	}
	return &Aggregator{
		field:     field,
		dateField: model.FieldSetting,
		reduce:    reduce,
		location:  location,
	}, nil
}

func (a *Aggregator) Field() string  { return a.field }
func (a *Aggregator) Reduce() string { return a.reduce }

// Value applies the reducer to accumulated stats.
func (a *Aggregator) Value(s DayStats) float64 {
	switch a.reduce {
	case model.ReduceMax:
		return s.Max
	case model.ReduceCount:
		return float64(s.Count)
	case model.ReduceAvg:
		if s.Values == 0 {
			return 0
		}
		return s.Sum / float64(s.Values)
	default:
		return s.Sum
	}
}

type datedActivity struct {
	date     time.Time
	activity model.Activity
}

// dated keeps the activities with a parseable date, in the aggregator's
// location. The number of dropped activities is returned alongside.
func (a *Aggregator) dated(activities []model.Activity) ([]datedActivity, int) {
	out := make([]datedActivity, 0, len(activities))
	skipped := 0
	for i, act := range activities {
		t, err := act.Date(a.dateField)
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip activity %d without date: %v", i, err))
			skipped++
			continue
		}
		out = append(out, datedActivity{date: t.In(a.location), activity: act})
	}
	return out, skipped
}

func (a *Aggregator) stats(group []datedActivity) DayStats {
	var s DayStats
	for _, d := range group {
		s.Count++
		v, ok := d.activity.Float(a.field)
		if !ok {
			continue
		}
		s.Values++
		s.Sum += v
		if s.Values == 1 || v > s.Max {
			s.Max = v
		}
	}
	return s
}

// Daily returns every day from the first to the last dated activity with its
// stats. Days without activities have zero stats.
func (a *Aggregator) Daily(activities []model.Activity) ([]timeline.DayValue[DayStats], error) {
	records, skipped := a.dated(activities)
	if skipped > 0 {
		util.LogWarn(fmt.Sprintf("Skipped %d activities without a %s date", skipped, a.dateField))
	}

	days, err := timeline.RollupEveryDay(records, a.stats, func(d datedActivity) time.Time {
		return d.date
	}, DayStats{})
	if err != nil {
		return nil, err
	}

	util.LogDebug(fmt.Sprintf("Rolled up %d activities into %d days", len(records), len(days)))
	return days, nil
}

// Group merges daily stats into periods (day, week or month) and reduces
// each period. Weeks start on Monday.
func (a *Aggregator) Group(days []timeline.DayValue[DayStats], groupBy string) ([]PeriodData, error) {
	var key func(time.Time) (string, time.Time)
	switch groupBy {
	case model.GroupByDay, "":
		key = func(d time.Time) (string, time.Time) {
			return d.Format("2006-01-02"), d
		}
	case model.GroupByWeek:
		key = func(d time.Time) (string, time.Time) {
			offset := (int(d.Weekday()) + 6) % 7
			start := d.AddDate(0, 0, -offset)
			year, week := d.ISOWeek()
			return fmt.Sprintf("%d-W%02d", year, week), start
		}
	case model.GroupByMonth:
		key = func(d time.Time) (string, time.Time) {
			start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
			return start.Format("2006-01"), start
		}
	default:
		return nil, fmt.Errorf("unknown grouping %q (expected day, week or month)", groupBy)
	}

	var result []PeriodData
	var current DayStats
	for _, d := range days {
		label, start := key(d.Day)
		if len(result) == 0 || result[len(result)-1].Period != label {
			if len(result) > 0 {
				result[len(result)-1].Value = a.Value(current)
			}
			result = append(result, PeriodData{Period: label, Start: start})
			current = DayStats{}
		}

		p := &result[len(result)-1]
		p.Days++
		p.Activities += d.Value.Count
		current = merge(current, d.Value)
	}
	if len(result) > 0 {
		result[len(result)-1].Value = a.Value(current)
	}
	return result, nil
}

func merge(total, day DayStats) DayStats {
	total.Count += day.Count
	if day.Values == 0 {
		return total
	}
	if total.Values == 0 || day.Max > total.Max {
		total.Max = day.Max
	}
	total.Values += day.Values
	total.Sum += day.Sum
	return total
}

// Summarize buckets the activities per day and reports range-wide figures.
func (a *Aggregator) Summarize(activities []model.Activity) (*Summary, error) {
	records, skipped := a.dated(activities)

	buckets, err := timeline.Bucketize(records,
		func(d datedActivity) time.Time { return d.date },
		func(time.Time) []datedActivity { return nil },
		func(bucket []datedActivity, d datedActivity) []datedActivity { return append(bucket, d) },
	)
	if err != nil {
		return nil, err
	}

	start, end, _ := timeline.Extent(records, func(d datedActivity) time.Time { return d.date })
	summary := &Summary{
		From:       model.Day(start),
		To:         model.Day(end.In(start.Location())),
		Activities: len(records),
		Skipped:    skipped,
	}

	var total DayStats
	streak, gap := 0, 0
	for _, day := range timeline.Days(start, end) {
		bucket := buckets[day]
		summary.Days++
		if len(bucket) == 0 {
			streak = 0
			gap++
			summary.LongestGap = max(summary.LongestGap, gap)
			continue
		}
		gap = 0
		streak++
		summary.ActiveDays++
		summary.LongestStreak = max(summary.LongestStreak, streak)
		total = merge(total, a.stats(bucket))
	}
	summary.Value = a.Value(total)

	return summary, nil
}
