// Package units provides shared timezone helpers for device timestamps.
package units

import (
	"fmt"
	"time"
)

// DeviceTimezone is the named zone the flowmeter reports its local
// timestamps in. The device clock is set on site and carries no zone of
// its own, so parsed timestamps are interpreted in this zone.
const DeviceTimezone = "Asia/Bangkok"

// IsTimezoneValid checks if the given timezone is valid by attempting to
// load it from the system tz database.
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// DeviceLocation loads the location for DeviceTimezone.
func DeviceLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(DeviceTimezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load device timezone %s: %w", DeviceTimezone, err)
	}
	return loc, nil
}

// ConvertTime converts a UTC time to the specified timezone.
// Storage keeps all times in UTC; this function converts them for display.
func ConvertTime(utcTime time.Time, targetTimezone string) (time.Time, error) {
	if targetTimezone == "UTC" {
		return utcTime, nil
	}
	loc, err := time.LoadLocation(targetTimezone)
	if err != nil {
		return utcTime, fmt.Errorf("failed to load timezone %s: %w", targetTimezone, err)
	}
	return utcTime.In(loc), nil
}
