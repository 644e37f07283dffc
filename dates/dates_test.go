package dates

import (
	"testing"
	"time"
)

func TestDayWindowUTCPlus2(t *testing.T) {
	eet := time.FixedZone("EET", 2*60*60)
	d := time.Date(2024, time.March, 10, 0, 0, 0, 0, eet)

	start := StartOfDay(d)
	want := time.Date(2024, time.March, 9, 22, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("start of day: expected %v, but got %v", want, start)
	}

	end := EndOfDay(d)
	want = time.Date(2024, time.March, 10, 21, 59, 59, 0, time.UTC)
	if !end.Equal(want) {
		t.Fatalf("end of day: expected %v, but got %v", want, end)
	}
}

func TestEndOfDayRoundTrip(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("EET", 2*60*60),
		time.FixedZone("PST", -8*60*60),
	}

	for _, loc := range zones {
		d := time.Date(2023, time.November, 5, 0, 0, 0, 0, loc)
		want := StartOfDay(d).Add(24*time.Hour - time.Second)
		if got := EndOfDay(d); !got.Equal(want) {
			t.Fatalf("zone %v: expected %v, but got %v", loc, want, got)
		}
	}
}

func TestStartOfDayIgnoresTimeOfDay(t *testing.T) {
	eet := time.FixedZone("EET", 2*60*60)
	morning := time.Date(2024, time.March, 10, 8, 30, 15, 0, eet)
	night := time.Date(2024, time.March, 10, 23, 59, 59, 0, eet)

	if !StartOfDay(morning).Equal(StartOfDay(night)) {
		t.Fatal("start of day should not depend on the time of day")
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		start, end time.Time
		want       int
	}{
		{
			time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			1,
		},
		{
			time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
			5,
		},
		{
			time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			3,
		},
	}

	for i, tt := range tests {
		if got := DaysBetween(tt.start, tt.end); got != tt.want {
			t.Fatalf("case %d: expected %d days, but got %d", i, tt.want, got)
		}
	}
}

func TestClockPredicates(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	clock := Fixed(now)

	if !HasEnded(clock, now.Add(-time.Second)) {
		t.Fatal("one second ago should have ended")
	}
	if HasEnded(clock, now.Add(time.Second)) {
		t.Fatal("one second ahead should not have ended")
	}
	if !IsUpcoming(clock, now.Add(time.Second)) {
		t.Fatal("one second ahead should be upcoming")
	}
	if IsUpcoming(clock, now.Add(-time.Second)) {
		t.Fatal("one second ago should not be upcoming")
	}
	if HasEnded(clock, now) || IsUpcoming(clock, now) {
		t.Fatal("the exact instant is neither ended nor upcoming")
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	clock := Fixed(now)

	if got := Remaining(clock, now.Add(90*time.Minute)); got != 90*time.Minute {
		t.Fatalf("expected 90m remaining, but got %v", got)
	}
	if got := Remaining(clock, now.Add(-time.Hour)); got != -time.Hour {
		t.Fatalf("expected -1h remaining, but got %v", got)
	}
}

func TestIsToday(t *testing.T) {
	eet := time.FixedZone("EET", 2*60*60)

	// 23:30 UTC on March 9th is already March 10th in EET.
	now := time.Date(2024, time.March, 9, 23, 30, 0, 0, time.UTC)
	clock := Fixed(now)

	target := time.Date(2024, time.March, 10, 21, 59, 59, 0, time.UTC)
	if !IsToday(clock, target, eet) {
		t.Fatal("target should be today in EET")
	}
	if IsToday(clock, target, time.UTC) {
		t.Fatal("target should not be today in UTC")
	}
}
