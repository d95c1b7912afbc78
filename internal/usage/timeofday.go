package usage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/sitereport/internal/model"
	"github.com/verte-zerg/sitereport/internal/source"
)

const (
	// TimeSheet is optional in an export.
	TimeSheet      = "Usage by time"
	timeHeaderRows = 1
	timeRowWidth   = 4
	// thirtyDayCol is the 30-day value column.
	thirtyDayCol = 3
)

// TimeOutcome is the result of reading one Usage by time row.
type TimeOutcome int

const (
	TimeAccepted TimeOutcome = iota
	TimeSkipNoValue
	TimeSkipBadLabel
	TimeSkipHourRange
)

func (o TimeOutcome) String() string {
	switch o {
	case TimeAccepted:
		return "accepted"
	case TimeSkipNoValue:
		return "non-numeric 30-day value"
	case TimeSkipBadLabel:
		return "unparseable hour label"
	case TimeSkipHourRange:
		return "hour out of range"
	default:
		return "unknown"
	}
}

// TimeResult is the parsed Usage by time sheet.
type TimeResult struct {
	Found    bool
	Totals   []model.TimeframeTotal
	Outcomes map[TimeOutcome]int
}

// ParseHour reads the hour from labels such as "Hour 13:00": the second
// whitespace-separated token, up to the first colon.
func ParseHour(label string) (int, error) {
	fields := strings.Fields(label)
	if len(fields) < 2 {
		return 0, fmt.Errorf("hour label %q has no hour token", label)
	}
	hourText, _, _ := strings.Cut(fields[1], ":")
	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return 0, fmt.Errorf("hour label %q: %w", label, err)
	}
	return hour, nil
}

// Bucket returns the index into model.Timeframes for an hour.
func Bucket(hour int) (int, bool) {
	for i, tf := range model.Timeframes {
		if hour >= tf.StartHour && hour <= tf.EndHour {
			return i, true
		}
	}
	return 0, false
}

// TimeAccumulator sums 30-day values into the fixed timeframe buckets.
type TimeAccumulator struct {
	sums     []float64
	outcomes map[TimeOutcome]int
}

// NewTimeAccumulator returns an accumulator with all buckets at zero.
func NewTimeAccumulator() *TimeAccumulator {
	return &TimeAccumulator{
		sums:     make([]float64, len(model.Timeframes)),
		outcomes: map[TimeOutcome]int{},
	}
}

// AddRow adds one sheet row.
func (a *TimeAccumulator) AddRow(row source.Row) TimeOutcome {
	outcome := a.addRow(row)
	a.outcomes[outcome]++
	return outcome
}

func (a *TimeAccumulator) addRow(row source.Row) TimeOutcome {
	value, ok := source.ParseNumber(row.Cell(thirtyDayCol))
	if !ok {
		return TimeSkipNoValue
	}
	hour, err := ParseHour(row.Cell(0))
	if err != nil {
		return TimeSkipBadLabel
	}
	idx, ok := Bucket(hour)
	if !ok {
		return TimeSkipHourRange
	}
	a.sums[idx] += value
	return TimeAccepted
}

// Totals returns buckets in fixed order with zero buckets dropped.
func (a *TimeAccumulator) Totals() []model.TimeframeTotal {
	all := lo.Map(model.Timeframes, func(tf model.Timeframe, i int) model.TimeframeTotal {
		return model.TimeframeTotal{Name: tf.Name, Visits: a.sums[i]}
	})
	return lo.Filter(all, func(t model.TimeframeTotal, _ int) bool {
		return t.Visits != 0
	})
}

// ReadTimeUsage reads the Usage by time sheet. A missing sheet is not an error.
func ReadTimeUsage(wb *source.Workbook) (TimeResult, error) {
	var res TimeResult
	sheet, ok := wb.FindSheet(TimeSheet, false)
	if !ok {
		return res, nil
	}
	res.Found = true

	it, err := wb.Rows(sheet, timeRowWidth)
	if err != nil {
		return res, err
	}
	defer func() {
		_ = it.Close()
	}()

	acc := NewTimeAccumulator()
	if it.Skip(timeHeaderRows) {
		for it.Next() {
			row := it.Row()
			if row.Empty() {
				break
			}
			acc.AddRow(row)
		}
	}
	if err := it.Err(); err != nil {
		return res, fmt.Errorf("failed to read %s from %s: %w", sheet, wb.Name(), err)
	}
	res.Totals = acc.Totals()
	res.Outcomes = acc.outcomes
	return res, nil
}
