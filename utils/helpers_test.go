package utils

import (
	"testing"
	"time"
)

func TestIsValidInterval(t *testing.T) {
	for _, interval := range []string{"Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year"} {
		if !IsValidInterval(interval) {
			t.Errorf("IsValidInterval(%q) = false", interval)
		}
	}
	for _, interval := range []string{"", "day", "Second", "Day; DROP TABLE"} {
		if IsValidInterval(interval) {
			t.Errorf("IsValidInterval(%q) = true", interval)
		}
	}
}

func TestParseTimeRange(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		start     string
		end       string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "defaults",
			wantStart: now.Add(-DefaultWindow),
			wantEnd:   now,
		},
		{
			name:      "explicit",
			start:     "2024-06-01T00:00:00Z",
			end:       "2024-06-02T00:00:00Z",
			wantStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "start only",
			start:     "2024-06-09T00:00:00Z",
			wantStart: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
			wantEnd:   now,
		},
		{name: "bad start", start: "yesterday", wantErr: true},
		{name: "bad end", end: "2024-06-01", wantErr: true},
		{name: "reversed", start: "2024-06-02T00:00:00Z", end: "2024-06-01T00:00:00Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ParseTimeRange(tt.start, tt.end, now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("got [%v, %v], want [%v, %v]", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"Computação", 7, "Computa"},
		{"ção", 2, "çã"},
		{"anything", 0, ""},
		{"anything", -1, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
