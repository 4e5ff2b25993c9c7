package date

import (
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2023-01-01", want: New(2023, time.January, 1)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: " 2025-07-01 ", want: New(2025, time.July, 1)},
		{in: "01/01/23", want: New(2023, time.January, 1)},
		{in: "15/03/2024", want: New(2024, time.March, 15)},
		{in: "31/02/2024", wantErr: true},
		{in: "2024/02", wantErr: true},
		{in: "aa/bb/cc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJSON(t *testing.T) {
	d := New(2024, time.December, 5)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-12-05"` {
		t.Errorf("MarshalJSON() = %s", b)
	}
	var got Date
	if err := got.UnmarshalJSON(b); err != nil {
		t.Fatal(err)
	}
	if got != d {
		t.Errorf("UnmarshalJSON() = %v, want %v", got, d)
	}
}

func TestStartEndOf(t *testing.T) {
	d := New(2025, time.August, 14) // a Thursday
	tests := []struct {
		p          Period
		start, end Date
	}{
		{Daily, d, d},
		{Weekly, New(2025, time.August, 11), New(2025, time.August, 17)},
		{Monthly, New(2025, time.August, 1), New(2025, time.August, 31)},
		{Quarterly, New(2025, time.July, 1), New(2025, time.September, 30)},
		{Yearly, New(2025, time.January, 1), New(2025, time.December, 31)},
	}
	for _, tt := range tests {
		if got := d.StartOf(tt.p); got != tt.start {
			t.Errorf("StartOf(%v) = %v, want %v", tt.p, got, tt.start)
		}
		if got := d.EndOf(tt.p); got != tt.end {
			t.Errorf("EndOf(%v) = %v, want %v", tt.p, got, tt.end)
		}
	}
}

func TestRangeContains(t *testing.T) {
	r := NewRange(New(2025, time.February, 10), Monthly)
	if !r.Contains(New(2025, time.February, 28)) {
		t.Errorf("%v should contain Feb 28", r)
	}
	if r.Contains(New(2025, time.March, 1)) {
		t.Errorf("%v should not contain Mar 1", r)
	}
	open := Range{From: New(2025, time.January, 1)}
	if !open.Contains(New(2030, time.January, 1)) {
		t.Errorf("%v should contain any later date", open)
	}
	if open.Contains(New(2024, time.December, 31)) {
		t.Errorf("%v should not contain an earlier date", open)
	}
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"day": Daily, "Weekly": Weekly, "month": Monthly, "quarter": Quarterly, "yearly": Yearly} {
		got, err := ParsePeriod(in)
		if err != nil || got != want {
			t.Errorf("ParsePeriod(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParsePeriod("fortnight"); err == nil {
		t.Errorf("ParsePeriod(fortnight) should fail")
	}
}
