// Package model defines shared data structures.
package model

import "time"

// Options defines settings for a report run.
type Options struct {
	InputDir   string
	OutputPath string
	FilePrefix string
	Extension  string
	UsageRows  int
	ChunkWeeks int
	Extended   bool
	Strict     bool
}

// ContentKey identifies a piece of content in the Popular Content sheet.
type ContentKey struct {
	Content string
	Type    string
}

// ContentRecord holds summed viewer counts for a content key.
type ContentRecord struct {
	Key           ContentKey
	UniqueViewers int64
	Viewers       int64
}

// TypeTotal is the viewer sum for one content type.
type TypeTotal struct {
	Type    string
	Viewers int64
}

// ContentSummary is the finalized aggregation. Records and TypeTotals are in
// first-seen order.
type ContentSummary struct {
	Records    []ContentRecord
	TypeTotals []TypeTotal
}

// Device is a fixed device category from the Usage by device sheet.
type Device int

const (
	Desktop Device = iota
	MobileDisplay
	Tablet
	OtherDevices
)

// Devices lists device categories in rendering order.
var Devices = []Device{Desktop, MobileDisplay, Tablet, OtherDevices}

func (d Device) String() string {
	switch d {
	case Desktop:
		return "Desktop"
	case MobileDisplay:
		return "Mobile Display"
	case Tablet:
		return "Tablet"
	case OtherDevices:
		return "Other Devices"
	default:
		return "Unknown"
	}
}

// UsageRow is one dated row of the Usage by device sheet.
type UsageRow struct {
	Date    time.Time
	Total   float64
	Devices map[Device]float64
}

// Weekdays is the fixed pivot row order.
var Weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// WeekdayPivot sums values by weekday and ISO week. A missing cell means no
// data for that weekday in that week.
type WeekdayPivot struct {
	Weeks []string
	Cells map[time.Weekday]map[string]float64
}

// Value returns the cell for a weekday and week.
func (p WeekdayPivot) Value(day time.Weekday, week string) (float64, bool) {
	row, ok := p.Cells[day]
	if !ok {
		return 0, false
	}
	v, ok := row[week]
	return v, ok
}

// Empty reports whether the pivot has no columns.
func (p WeekdayPivot) Empty() bool {
	return len(p.Weeks) == 0
}

// Timeframe is a named hour-of-day range.
type Timeframe struct {
	Name      string
	StartHour int
	EndHour   int
}

// Timeframes lists the fixed buckets in order.
var Timeframes = []Timeframe{
	{Name: "Early Morning", StartHour: 0, EndHour: 4},
	{Name: "Morning", StartHour: 5, EndHour: 11},
	{Name: "Afternoon", StartHour: 12, EndHour: 17},
	{Name: "Night", StartHour: 18, EndHour: 20},
	{Name: "Midnight", StartHour: 21, EndHour: 23},
}

// TimeframeTotal is the summed 30-day value of a timeframe bucket.
type TimeframeTotal struct {
	Name   string
	Visits float64
}

// Report contains everything a renderer needs.
type Report struct {
	GeneratedAt  time.Time
	InputDir     string
	Files        []string
	SkippedFiles []string
	Content      ContentSummary
	LatestFile   string
	LatestDate   time.Time
	Usage        []UsageRow
	TotalPivot   WeekdayPivot
	DevicePivots map[Device]WeekdayPivot
	HasTimeSheet bool
	Timeframes   []TimeframeTotal
}

// RunSummary describes a recorded report run.
type RunSummary struct {
	ID          string
	GeneratedAt time.Time
	InputDir    string
	OutputPath  string
	LatestFile  string
	Files       int
	Records     int
	UsageRows   int
}
