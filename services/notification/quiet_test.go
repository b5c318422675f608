package notification

import (
	"testing"
	"time"

	"flowdesk/models"
)

func clock(t *testing.T, hhmm string) time.Time {
	t.Helper()
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		t.Fatalf("bad test clock %q: %v", hhmm, err)
	}
	return parsed
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseClock(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseClock(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestQuietHoursActive(t *testing.T) {
	nonWrap := models.QuietHours{Enabled: true, Start: "09:00", End: "18:00"}
	wrap := models.QuietHours{Enabled: true, Start: "22:00", End: "08:00"}

	cases := []struct {
		name   string
		window models.QuietHours
		now    string
		want   bool
	}{
		{"non-wrap inside", nonWrap, "12:00", true},
		{"non-wrap before", nonWrap, "08:59", false},
		{"non-wrap after", nonWrap, "18:01", false},
		{"non-wrap start boundary", nonWrap, "09:00", true},
		{"non-wrap end boundary", nonWrap, "18:00", true},
		{"wrap late evening", wrap, "23:00", true},
		{"wrap early morning", wrap, "03:00", true},
		{"wrap daytime", wrap, "12:00", false},
		{"wrap start boundary", wrap, "22:00", true},
		{"wrap end boundary", wrap, "08:00", true},
		{"wrap just outside", wrap, "08:01", false},
		{"disabled", models.QuietHours{Start: "00:00", End: "23:59"}, "12:00", false},
		{"invalid start treated inactive", models.QuietHours{Enabled: true, Start: "25:00", End: "08:00"}, "03:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := quietHoursActive(tc.window, clock(t, tc.now)); got != tc.want {
				t.Errorf("quietHoursActive(%+v, %s) = %v, want %v", tc.window, tc.now, got, tc.want)
			}
		})
	}
}
