package service

import (
	"github.com/dayanaadylkhanova/device-readings/internal/entity"
	"go.uber.org/atomic"
)

type readingKey struct {
	device entity.DeviceID
	at     entity.Instant
}

// ledger holds the readings of one shard. Records are appended to an arena and
// never rewritten; index and byDevice point into it.
type ledger struct {
	seq      *atomic.Int64
	readings []entity.Reading
	index    map[readingKey]int
	byDevice map[entity.DeviceID][]int
}

func newLedger(seq *atomic.Int64) ledger {
	return ledger{
		seq:      seq,
		index:    make(map[readingKey]int, 1024),
		byDevice: make(map[entity.DeviceID][]int, 64),
	}
}

// insertIfAbsent stores a reading unless one already exists for (device, at).
// On collision the stored reading is returned untouched and count is discarded.
func (l *ledger) insertIfAbsent(device entity.DeviceID, at entity.Instant, count int64) (entity.Reading, bool) {
	k := readingKey{device: device, at: at}
	if i, ok := l.index[k]; ok {
		return l.readings[i], false
	}
	rd := entity.Reading{
		ID:       entity.ReadingID(l.seq.Inc()),
		DeviceID: device,
		At:       at,
		Count:    count,
	}
	l.readings = append(l.readings, rd)
	i := len(l.readings) - 1
	l.index[k] = i
	l.byDevice[device] = append(l.byDevice[device], i)
	return rd, true
}

func (l *ledger) each(device entity.DeviceID, fn func(entity.Reading)) {
	for _, i := range l.byDevice[device] {
		fn(l.readings[i])
	}
}

func (l *ledger) len() int { return len(l.readings) }
