package timeline

import (
	"fmt"
	"time"
)

// Bucketize builds one bucket per calendar day spanning the records' date
// range, initialised by empty, then hands each record to place together with
// the bucket of its own day. place returns the updated bucket.
//
// Buckets are keyed by midnight in the location of the earliest record.
func Bucketize[T, B any](
	records []T,
	date func(T) time.Time,
	empty func(day time.Time) B,
	place func(bucket B, record T) B,
) (map[time.Time]B, error) {
	start, end, err := Extent(records, date)
	if err != nil {
		return nil, err
	}
	loc := start.Location()

	days := Days(start, end)
	buckets := make(map[time.Time]B, len(days))
	for _, day := range days {
		buckets[day] = empty(day)
	}

	for _, r := range records {
		key := dayKey(date(r), loc)
		bucket, ok := buckets[key]
		if !ok {
			return nil, fmt.Errorf("timeline: no bucket for %s", key.Format("2006-01-02"))
		}
		buckets[key] = place(bucket, r)
	}

	return buckets, nil
}
