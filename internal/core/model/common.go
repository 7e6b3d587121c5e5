package model

// Column names used by the Runalyze data browser table
const (
	FieldSetting     = "Setting"
	FieldDistance    = "Distance"
	FieldDuration    = "Duration"
	FieldPace        = "Pace"
	FieldElevation   = "Elevation"
	FieldTemperature = "Temperature"
)

// IconSuffix is appended to header names that only carry an icon title, so
// icon-only columns get stable, distinguishable names.
const IconSuffix = " icon"

// Reducer names accepted by rollups
const (
	ReduceSum   = "sum"
	ReduceMax   = "max"
	ReduceCount = "count"
	ReduceAvg   = "avg"
)

// Period names accepted by rollups
const (
	GroupByDay   = "day"
	GroupByWeek  = "week"
	GroupByMonth = "month"
)
