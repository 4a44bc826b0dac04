package units

import (
	"testing"
	"time"
)

func TestIsTimezoneValid(t *testing.T) {
	tests := []struct {
		name     string
		tz       string
		expected bool
	}{
		{"device zone", "Asia/Bangkok", true},
		{"utc", "UTC", true},
		{"invalid", "Not/AZone", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimezoneValid(tt.tz); got != tt.expected {
				t.Errorf("IsTimezoneValid(%q) = %v, want %v", tt.tz, got, tt.expected)
			}
		})
	}
}

func TestDeviceLocation(t *testing.T) {
	loc, err := DeviceLocation()
	if err != nil {
		t.Fatalf("DeviceLocation() returned error: %v", err)
	}
	if loc.String() != DeviceTimezone {
		t.Errorf("DeviceLocation() = %s, want %s", loc, DeviceTimezone)
	}
}

func TestConvertTime(t *testing.T) {
	utc := time.Date(2024, time.June, 1, 5, 0, 0, 0, time.UTC)

	got, err := ConvertTime(utc, "Asia/Bangkok")
	if err != nil {
		t.Fatalf("ConvertTime returned error: %v", err)
	}
	// Bangkok is UTC+7 with no DST
	if got.Hour() != 12 {
		t.Errorf("converted hour = %d, want 12", got.Hour())
	}
	if !got.Equal(utc) {
		t.Error("converted time should represent the same instant")
	}

	same, err := ConvertTime(utc, "UTC")
	if err != nil {
		t.Fatalf("ConvertTime(UTC) returned error: %v", err)
	}
	if same != utc {
		t.Error("ConvertTime to UTC should be a no-op")
	}

	if _, err := ConvertTime(utc, "Not/AZone"); err == nil {
		t.Error("expected error for invalid timezone")
	}
}
