package aggregator

import (
	"errors"
	"testing"
	"time"

	"github.com/penwyp/go-runalyze/internal/core/model"
	"github.com/penwyp/go-runalyze/internal/core/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(date string, distance float64) model.Activity {
	return model.Activity{
		model.FieldSetting:  model.TextValue(date),
		model.FieldDistance: model.NumberValue(distance),
	}
}

func newAggregator(t *testing.T, reduce string) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(model.FieldDistance, reduce, time.UTC)
	require.NoError(t, err)
	return agg
}

func sampleActivities() []model.Activity {
	return []model.Activity{
		activity("2024-01-03T00:00:00Z", 5000),
		activity("2024-01-01T00:00:00Z", 10000),
		activity("2024-01-03T00:00:00Z", 3000),
		{model.FieldSetting: model.TextValue("2024-01-04T00:00:00Z"), model.FieldDistance: model.TextValue("-")},
	}
}

func TestNewAggregatorValidation(t *testing.T) {
	_, err := NewAggregator(model.FieldDistance, "median", time.UTC)
	assert.Error(t, err)

	_, err = NewAggregator("", model.ReduceSum, time.UTC)
	assert.Error(t, err)

	agg, err := NewAggregator(model.FieldDistance, model.ReduceSum, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Local, agg.location)
}

func TestAggregatorDailyFillsGaps(t *testing.T) {
	agg := newAggregator(t, model.ReduceSum)

	days, err := agg.Daily(sampleActivities())
	require.NoError(t, err)
	require.Len(t, days, 4)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), days[0].Day)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), days[3].Day)

	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = agg.Value(d.Value)
	}
	assert.Equal(t, []float64{10000, 0, 8000, 0}, values)
	assert.Equal(t, 1, days[3].Value.Count, "non-numeric field still counts the activity")
}

func TestAggregatorReducers(t *testing.T) {
	tests := []struct {
		reduce string
		want   []float64
	}{
		{model.ReduceSum, []float64{10000, 0, 8000, 0}},
		{model.ReduceMax, []float64{10000, 0, 5000, 0}},
		{model.ReduceCount, []float64{1, 0, 2, 1}},
		{model.ReduceAvg, []float64{10000, 0, 4000, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.reduce, func(t *testing.T) {
			agg := newAggregator(t, tt.reduce)
			days, err := agg.Daily(sampleActivities())
			require.NoError(t, err)

			got := make([]float64, len(days))
			for i, d := range days {
				got[i] = agg.Value(d.Value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregatorReducersIgnoreNonNumeric(t *testing.T) {
	temperature := func(date string, v model.Value) model.Activity {
		return model.Activity{model.FieldSetting: model.TextValue(date), model.FieldTemperature: v}
	}
	activities := []model.Activity{
		temperature("2024-01-01T00:00:00Z", model.TextValue("")),
		temperature("2024-01-01T00:00:00Z", model.NumberValue(-5)),
		temperature("2024-01-02T00:00:00Z", model.TextValue("-")),
		temperature("2024-01-03T00:00:00Z", model.NumberValue(-8)),
		temperature("2024-01-03T00:00:00Z", model.NumberValue(-2)),
	}

	tests := []struct {
		reduce string
		daily  []float64
		total  float64
	}{
		{model.ReduceMax, []float64{-5, 0, -2}, -2},
		{model.ReduceAvg, []float64{-5, 0, -5}, -5},
		{model.ReduceCount, []float64{2, 1, 2}, 5},
		{model.ReduceSum, []float64{-5, 0, -10}, -15},
	}

	for _, tt := range tests {
		t.Run(tt.reduce, func(t *testing.T) {
			agg, err := NewAggregator(model.FieldTemperature, tt.reduce, time.UTC)
			require.NoError(t, err)

			days, err := agg.Daily(activities)
			require.NoError(t, err)
			got := make([]float64, len(days))
			for i, d := range days {
				got[i] = agg.Value(d.Value)
			}
			assert.Equal(t, tt.daily, got)

			periods, err := agg.Group(days, model.GroupByMonth)
			require.NoError(t, err)
			require.Len(t, periods, 1)
			assert.Equal(t, tt.total, periods[0].Value)
			assert.Equal(t, 5, periods[0].Activities)

			summary, err := agg.Summarize(activities)
			require.NoError(t, err)
			assert.Equal(t, tt.total, summary.Value)
		})
	}
}

func TestAggregatorDailyEmpty(t *testing.T) {
	agg := newAggregator(t, model.ReduceSum)

	_, err := agg.Daily(nil)
	assert.True(t, errors.Is(err, timeline.ErrEmptyInput))

	_, err = agg.Daily([]model.Activity{{model.FieldSetting: model.TextValue("03/05 Tue")}})
	assert.True(t, errors.Is(err, timeline.ErrEmptyInput), "undated activities are dropped before rolling up")
}

func TestAggregatorDailyUsesLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	agg, err := NewAggregator(model.FieldDistance, model.ReduceSum, berlin)
	require.NoError(t, err)

	// 23:30 UTC is already the next day in Berlin
	days, err := agg.Daily([]model.Activity{activity("2024-03-01T23:30:00Z", 1000)})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, berlin), days[0].Day)
}

func TestAggregatorGroup(t *testing.T) {
	agg := newAggregator(t, model.ReduceSum)
	activities := []model.Activity{
		activity("2024-01-28T00:00:00Z", 1000), // Sunday
		activity("2024-01-29T00:00:00Z", 2000), // Monday
		activity("2024-02-02T00:00:00Z", 4000),
	}
	days, err := agg.Daily(activities)
	require.NoError(t, err)

	t.Run("day", func(t *testing.T) {
		periods, err := agg.Group(days, model.GroupByDay)
		require.NoError(t, err)
		require.Len(t, periods, 6)
		assert.Equal(t, "2024-01-28", periods[0].Period)
		assert.Equal(t, 1000.0, periods[0].Value)
	})

	t.Run("week", func(t *testing.T) {
		periods, err := agg.Group(days, model.GroupByWeek)
		require.NoError(t, err)
		require.Len(t, periods, 2)
		assert.Equal(t, "2024-W04", periods[0].Period)
		assert.Equal(t, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), periods[0].Start)
		assert.Equal(t, 1, periods[0].Days)
		assert.Equal(t, "2024-W05", periods[1].Period)
		assert.Equal(t, 5, periods[1].Days)
		assert.Equal(t, 2, periods[1].Activities)
		assert.Equal(t, 6000.0, periods[1].Value)
	})

	t.Run("month", func(t *testing.T) {
		periods, err := agg.Group(days, model.GroupByMonth)
		require.NoError(t, err)
		require.Len(t, periods, 2)
		assert.Equal(t, "2024-01", periods[0].Period)
		assert.Equal(t, 3000.0, periods[0].Value)
		assert.Equal(t, "2024-02", periods[1].Period)
		assert.Equal(t, 4000.0, periods[1].Value)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := agg.Group(days, "year")
		assert.Error(t, err)
	})
}

func TestAggregatorGroupAverageAcrossDays(t *testing.T) {
	agg := newAggregator(t, model.ReduceAvg)
	days, err := agg.Daily([]model.Activity{
		activity("2024-05-01T00:00:00Z", 1000),
		activity("2024-05-03T00:00:00Z", 2000),
		activity("2024-05-03T00:00:00Z", 6000),
	})
	require.NoError(t, err)

	periods, err := agg.Group(days, model.GroupByMonth)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, 3000.0, periods[0].Value, "average over activities, not over days")
}

func TestAggregatorSummarize(t *testing.T) {
	agg := newAggregator(t, model.ReduceSum)
	activities := []model.Activity{
		activity("2024-01-01T00:00:00Z", 1000),
		activity("2024-01-02T00:00:00Z", 1000),
		activity("2024-01-03T00:00:00Z", 1000),
		activity("2024-01-07T00:00:00Z", 500),
		{model.FieldDistance: model.NumberValue(9999)},
	}

	summary, err := agg.Summarize(activities)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), summary.From)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), summary.To)
	assert.Equal(t, 7, summary.Days)
	assert.Equal(t, 4, summary.ActiveDays)
	assert.Equal(t, 4, summary.Activities)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 3500.0, summary.Value)
	assert.Equal(t, 3, summary.LongestStreak)
	assert.Equal(t, 3, summary.LongestGap)

	_, err = agg.Summarize(nil)
	assert.True(t, errors.Is(err, timeline.ErrEmptyInput))
}
