package timeline

import (
	"sort"
	"time"
)

// RollupEveryDay groups records by calendar day, reduces each group, fills
// days without records with defaultValue and returns the days in ascending
// order.
func RollupEveryDay[T, V any](
	records []T,
	reduce func([]T) V,
	date func(T) time.Time,
	defaultValue V,
) ([]DayValue[V], error) {
	start, end, err := Extent(records, date)
	if err != nil {
		return nil, err
	}
	loc := start.Location()

	groups := make(map[time.Time][]T)
	for _, r := range records {
		key := dayKey(date(r), loc)
		groups[key] = append(groups[key], r)
	}

	rollup := make(map[time.Time]V, len(groups))
	for day, group := range groups {
		rollup[day] = reduce(group)
	}

	for _, day := range Days(start, end) {
		if _, ok := rollup[day]; !ok {
			rollup[day] = defaultValue
		}
	}

	// Map iteration order is random, so the output order comes from an explicit sort.
	result := make([]DayValue[V], 0, len(rollup))
	for day, v := range rollup {
		result = append(result, DayValue[V]{Day: day, Value: v})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Day.Before(result[j].Day)
	})

	return result, nil
}

// Values returns the reduced values of a rollup in day order.
func Values[V any](days []DayValue[V]) []V {
	out := make([]V, len(days))
	for i, d := range days {
		out[i] = d.Value
	}
	return out
}
