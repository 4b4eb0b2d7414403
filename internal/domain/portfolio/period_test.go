package portfolio

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"day", PeriodDay, false},
		{"WEEK", PeriodWeek, false},
		{" month ", PeriodMonth, false},
		{"quarter", PeriodQuarter, false},
		{"year", PeriodYear, false},
		{"fortnight", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePeriod(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBucketKey(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name   string
		period Period
		t      time.Time
		want   string
	}{
		{"day", PeriodDay, date(2024, time.January, 5), "2024-01-05"},
		{"month", PeriodMonth, date(2024, time.January, 5), "2024-01"},
		{"year", PeriodYear, date(2024, time.January, 5), "2024"},
		{"quarter q1", PeriodQuarter, date(2024, time.March, 31), "2024-Q1"},
		{"quarter q2", PeriodQuarter, date(2024, time.April, 1), "2024-Q2"},
		{"quarter q4", PeriodQuarter, date(2024, time.December, 15), "2024-Q4"},
		{"week mid year", PeriodWeek, date(2024, time.June, 5), "2024-W23"},
		{"week zero padded", PeriodWeek, date(2024, time.January, 10), "2024-W02"},
		// Jan 1 2023 is a Sunday and belongs to ISO week 52 of 2022.
		{"week iso year boundary", PeriodWeek, date(2023, time.January, 1), "2022-W52"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.BucketKey(tt.t); got != tt.want {
				t.Errorf("BucketKey(%s) = %q, want %q", tt.t.Format(time.DateOnly), got, tt.want)
			}
		})
	}
}

func TestBucketKeysSortChronologically(t *testing.T) {
	// Lexicographic order on keys must match time order within one
	// granularity; this is what lets the summary sort on the key string.
	for _, p := range Periods {
		prev := ""
		for m := time.January; m <= time.December; m++ {
			key := p.BucketKey(time.Date(2024, m, 15, 0, 0, 0, 0, time.UTC))
			if prev != "" && key < prev {
				t.Errorf("%s: key %q sorts before earlier key %q", p, key, prev)
			}
			prev = key
		}
	}
}
