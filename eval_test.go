package spath

import "testing"

func TestSliceBounds(t *testing.T) {
	tests := []struct {
		name      string
		start     int64
		end       int64
		step      int64
		length    int64
		wantLower int64
		wantUpper int64
	}{
		{name: "full forward", start: 0, end: 5, step: 1, length: 5, wantLower: 0, wantUpper: 5},
		{name: "clamped end", start: 2, end: 100, step: 1, length: 5, wantLower: 2, wantUpper: 5},
		{name: "clamped start", start: -100, end: 3, step: 1, length: 5, wantLower: 0, wantUpper: 3},
		{name: "negative bounds", start: -3, end: -1, step: 1, length: 5, wantLower: 2, wantUpper: 4},
		{name: "empty range", start: 4, end: 2, step: 1, length: 5, wantLower: 4, wantUpper: 2},
		{name: "reverse defaults", start: 4, end: -6, step: -1, length: 5, wantLower: -1, wantUpper: 4},
		{name: "reverse clamped", start: 100, end: -100, step: -1, length: 5, wantLower: -1, wantUpper: 4},
		{name: "reverse inner", start: 3, end: 0, step: -1, length: 5, wantLower: 0, wantUpper: 3},
		{name: "empty array", start: 0, end: 5, step: 1, length: 0, wantLower: 0, wantUpper: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper := sliceBounds(tt.start, tt.end, tt.step, tt.length)
			if lower != tt.wantLower || upper != tt.wantUpper {
				t.Errorf("sliceBounds(%d, %d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.start, tt.end, tt.step, tt.length, lower, upper, tt.wantLower, tt.wantUpper)
			}
		})
	}
}

func TestQuoteName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "'plain'"},
		{in: "it's", want: `'it\'s'`},
		{in: `back\slash`, want: `'back\\slash'`},
		{in: "tab\there", want: `'tab\there'`},
		{in: "\x01", want: `'\u0001'`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := quoteName(tt.in); got != tt.want {
				t.Errorf("quoteName(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
