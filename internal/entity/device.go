package entity

import "time"

type DeviceID int64

type ReadingID int64

// Device is created once per distinct uid and never mutated afterwards.
type Device struct {
	ID  DeviceID
	UID string
}

// Reading is unique per (DeviceID, At). Count is fixed by the first accepted write.
type Reading struct {
	ID       ReadingID
	DeviceID DeviceID
	At       Instant
	Count    int64
}

// AggregateSnapshot is the running total and maximum instant of a device's accepted readings.
type AggregateSnapshot struct {
	TotalCount int64
	Latest     Instant
	HasLatest  bool
}

// LatestTime returns the cached maximum as UTC time, or nil when the device has no readings.
func (s AggregateSnapshot) LatestTime() *time.Time {
	if !s.HasLatest {
		return nil
	}
	t := s.Latest.Time()
	return &t
}
