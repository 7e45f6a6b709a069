package service

import "github.com/dayanaadylkhanova/device-readings/internal/entity"

// aggregateCache keeps per-device running totals and maximum instants. It is
// updated once per accepted reading and can always be rebuilt from the ledger.
type aggregateCache struct {
	snapshots map[entity.DeviceID]*entity.AggregateSnapshot
}

func newAggregateCache() aggregateCache {
	return aggregateCache{snapshots: make(map[entity.DeviceID]*entity.AggregateSnapshot, 64)}
}

func (c *aggregateCache) init(device entity.DeviceID) {
	if _, ok := c.snapshots[device]; !ok {
		c.snapshots[device] = &entity.AggregateSnapshot{}
	}
}

func (c *aggregateCache) recordInsertion(device entity.DeviceID, count int64, at entity.Instant) {
	s, ok := c.snapshots[device]
	if !ok {
		s = &entity.AggregateSnapshot{}
		c.snapshots[device] = s
	}
	s.TotalCount += count
	if !s.HasLatest || at > s.Latest {
		s.Latest = at
		s.HasLatest = true
	}
}

func (c *aggregateCache) totalCount(device entity.DeviceID) int64 {
	if s, ok := c.snapshots[device]; ok {
		return s.TotalCount
	}
	return 0
}

func (c *aggregateCache) latestInstant(device entity.DeviceID) (entity.Instant, bool) {
	if s, ok := c.snapshots[device]; ok && s.HasLatest {
		return s.Latest, true
	}
	return 0, false
}

func (c *aggregateCache) snapshot(device entity.DeviceID) entity.AggregateSnapshot {
	if s, ok := c.snapshots[device]; ok {
		return *s
	}
	return entity.AggregateSnapshot{}
}
