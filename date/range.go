package date

import "fmt"

// Range represents a range of dates, boundaries included.
//
// A zero From or To leaves that side open.
type Range struct{ From, To Date }

// NewRange returns the standard period range containing d.
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

func (r Range) String() string {
	switch {
	case r.From.IsZero() && r.To.IsZero():
		return "all time"
	case r.From.IsZero():
		return fmt.Sprintf("until %s", r.To)
	case r.To.IsZero():
		return fmt.Sprintf("since %s", r.From)
	default:
		return fmt.Sprintf("%s to %s", r.From, r.To)
	}
}
