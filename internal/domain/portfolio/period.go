package portfolio

import (
	"fmt"
	"strings"
	"time"

	"github.com/wealthdesk/wealthdesk/pkg/errors"
)

// Period is a bucketing granularity for transaction summaries.
type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// Periods lists all supported granularities in ascending coarseness.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear}

// ParsePeriod normalises a query-string tag into a Period.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return p, nil
	}
	return "", errors.New(errors.ErrCodePeriodInvalid,
		fmt.Sprintf("unknown period %q; expected day|week|month|quarter|year", s))
}

// BucketKey returns the canonical zero-padded bucket key for t at this
// granularity. Keys sort lexicographically in chronological order within
// a single granularity:
//
//	day      2024-01-05
//	week     2024-W02      (ISO-8601 week-of-year)
//	month    2024-01
//	quarter  2024-Q1
//	year     2024
//
// Week keys use the ISO week-year, which can differ from the calendar year
// around January 1st.
func (p Period) BucketKey(t time.Time) string {
	switch p {
	case PeriodDay:
		return t.Format("2006-01-02")
	case PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case PeriodMonth:
		return t.Format("2006-01")
	case PeriodQuarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), quarterOf(t.Month()))
	case PeriodYear:
		return t.Format("2006")
	}
	return t.Format("2006-01-02")
}

// quarterOf returns the 1-indexed calendar quarter for a month.
func quarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}
