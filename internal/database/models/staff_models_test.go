package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeAmount(t *testing.T) {
	daily := decimal.RequireFromString("800")

	cases := []struct {
		name     string
		att      Attendance
		expected string
	}{
		{"full day", Attendance{Status: AttendanceStatusFull}, "800"},
		{"half day", Attendance{Status: AttendanceStatusHalf}, "400"},
		{"absent", Attendance{Status: AttendanceStatusAbsent}, "0"},
		{"unknown status", Attendance{Status: "???"}, "0"},
	}
	for _, tc := range cases {
		got := tc.att.ComputeAmount(daily)
		if !got.Equal(decimal.RequireFromString(tc.expected)) {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.expected, got)
		}
	}
}

func TestComputeAmountOverrideWins(t *testing.T) {
	daily := decimal.RequireFromString("800")
	override := decimal.RequireFromString("650")

	att := Attendance{Status: AttendanceStatusAbsent, OverrideAmount: &override}
	got := att.ComputeAmount(daily)
	if !got.Equal(override) {
		t.Fatalf("override expected 650 regardless of status, got %s", got)
	}
}
