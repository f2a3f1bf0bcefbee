package dates

import (
	"testing"
	"time"
)

func TestParseAndString(t *testing.T) {
	d, err := Parse("2024-01-10")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Year != 2024 || d.Month != time.January || d.Day != 10 {
		t.Errorf("unexpected date: %+v", d)
	}
	if d.String() != "2024-01-10" {
		t.Errorf("expected 2024-01-10, got %s", d.String())
	}

	if _, err := Parse("10/01/2024"); err == nil {
		t.Error("expected error for non ISO date")
	}
}

func TestNextAcrossMonthAndYear(t *testing.T) {
	d := New(2024, time.January, 31)
	if got := d.Next(); got != New(2024, time.February, 1) {
		t.Errorf("expected 2024-02-01, got %s", got)
	}

	d = New(2023, time.December, 31)
	if got := d.Next(); got != New(2024, time.January, 1) {
		t.Errorf("expected 2024-01-01, got %s", got)
	}

	// Leap day
	d = New(2024, time.February, 28)
	if got := d.Next(); got != New(2024, time.February, 29) {
		t.Errorf("expected 2024-02-29, got %s", got)
	}
}

func TestFromTimeUsesLocalCalendar(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	// 03:30 UTC is still the previous evening in New York.
	ts := time.Date(2024, time.June, 15, 3, 30, 0, 0, time.UTC)
	if got := FromTime(ts, loc); got != New(2024, time.June, 14) {
		t.Errorf("expected 2024-06-14 in New York, got %s", got)
	}
	if got := FromTime(ts, time.UTC); got != New(2024, time.June, 15) {
		t.Errorf("expected 2024-06-15 in UTC, got %s", got)
	}
}

func TestBeforeAndAddDays(t *testing.T) {
	a := New(2024, time.March, 1)
	b := New(2024, time.March, 3)
	if !a.Before(b) || b.Before(a) {
		t.Error("Before comparison broken")
	}
	if got := a.AddDays(2); got != b {
		t.Errorf("expected %s, got %s", b, got)
	}
	if got := b.Prev().Prev(); got != a {
		t.Errorf("expected %s, got %s", a, got)
	}
}
