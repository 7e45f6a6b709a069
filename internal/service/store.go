package service

import (
	"sync"

	"github.com/dayanaadylkhanova/device-readings/internal/entity"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// shard guards the ledger and aggregates of the devices hashed to it.
// Lock order is always registry -> shard, and a shard lock is never held
// while taking another shard or the registry.
type shard struct {
	mu     sync.Mutex
	ledger ledger
	cache  aggregateCache
	dirty  map[entity.DeviceID]struct{}
}

type StoreStats struct {
	Devices  int
	Readings int
}

// Store is the in-memory device/reading engine shared by all transports.
type Store struct {
	log      *zap.Logger
	obs      IngestObserver
	registry *Registry
	shards   []shard
}

var _ DeviceStore = (*Store)(nil)

func NewStore(log *zap.Logger, shardCount int, obs IngestObserver) *Store {
	if shardCount <= 0 {
		shardCount = 1
	}
	if obs == nil {
		obs = nopObserver{}
	}
	seq := atomic.NewInt64(0)
	s := &Store{log: log, obs: obs, shards: make([]shard, shardCount)}
	for i := range s.shards {
		s.shards[i] = shard{
			ledger: newLedger(seq),
			cache:  newAggregateCache(),
			dirty:  make(map[entity.DeviceID]struct{}, 64),
		}
	}
	s.registry = NewRegistry(s.initDevice)
	return s
}

func (s *Store) shardFor(id entity.DeviceID) *shard {
	return &s.shards[uint64(id)%uint64(len(s.shards))]
}

// initDevice runs under the registry lock on device creation.
func (s *Store) initDevice(dev entity.Device) {
	sh := s.shardFor(dev.ID)
	sh.mu.Lock()
	sh.cache.init(dev.ID)
	sh.mu.Unlock()
	s.obs.DeviceRegistered()
	s.log.Debug("device registered", zap.String("uid", dev.UID), zap.Int64("device_id", int64(dev.ID)))
}

func (s *Store) RegisterOrFindDevice(uid string) entity.Device {
	dev, _ := s.registry.FindOrCreate(uid)
	return dev
}

// CreateDevice is the strict creation path; it fails with ErrDuplicateUID.
func (s *Store) CreateDevice(uid string) (entity.Device, error) {
	return s.registry.Create(uid)
}

// IngestReading stores one reading for uid, registering the device on first
// use. Repeating an instant keeps the first count and reports inserted=false.
func (s *Store) IngestReading(uid string, at entity.Instant, count int64) (entity.Reading, bool) {
	dev := s.RegisterOrFindDevice(uid)
	sh := s.shardFor(dev.ID)
	sh.mu.Lock()
	rd, inserted := s.insertLocked(sh, dev.ID, at, count)
	sh.mu.Unlock()
	s.observe(inserted)
	return rd, inserted
}

// Ingest stores a batch for one device and returns how many readings were
// accepted. Items are independent: duplicates are skipped, nothing is rolled back.
func (s *Store) Ingest(uid string, samples []entity.Sample) int {
	dev := s.RegisterOrFindDevice(uid)
	sh := s.shardFor(dev.ID)
	accepted := 0
	sh.mu.Lock()
	for _, smp := range samples {
		if _, inserted := s.insertLocked(sh, dev.ID, smp.At, smp.Count); inserted {
			accepted++
		}
	}
	sh.mu.Unlock()
	for i := 0; i < accepted; i++ {
		s.obs.ReadingAccepted()
	}
	for i := accepted; i < len(samples); i++ {
		s.obs.ReadingDuplicate()
	}
	return accepted
}

func (s *Store) insertLocked(sh *shard, id entity.DeviceID, at entity.Instant, count int64) (entity.Reading, bool) {
	rd, inserted := sh.ledger.insertIfAbsent(id, at, count)
	if inserted {
		sh.cache.recordInsertion(id, count, at)
		sh.dirty[id] = struct{}{}
	}
	return rd, inserted
}

func (s *Store) observe(inserted bool) {
	if inserted {
		s.obs.ReadingAccepted()
		return
	}
	s.obs.ReadingDuplicate()
}

func (s *Store) TotalCount(uid string) (int64, error) {
	dev, ok := s.registry.FindByUID(uid)
	if !ok {
		return 0, ErrDeviceNotFound
	}
	sh := s.shardFor(dev.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.cache.totalCount(dev.ID), nil
}

// LatestTimestamp returns the maximum accepted instant. ok is false when the
// device exists but has no readings yet.
func (s *Store) LatestTimestamp(uid string) (at entity.Instant, ok bool, err error) {
	dev, found := s.registry.FindByUID(uid)
	if !found {
		return 0, false, ErrDeviceNotFound
	}
	sh := s.shardFor(dev.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	at, ok = sh.cache.latestInstant(dev.ID)
	return at, ok, nil
}

// Snapshot returns both aggregates of a device read under one lock.
func (s *Store) Snapshot(uid string) (entity.AggregateSnapshot, error) {
	dev, ok := s.registry.FindByUID(uid)
	if !ok {
		return entity.AggregateSnapshot{}, ErrDeviceNotFound
	}
	sh := s.shardFor(dev.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.cache.snapshot(dev.ID), nil
}

// Recompute rebuilds the aggregates of a device by scanning its readings.
func (s *Store) Recompute(uid string) (entity.AggregateSnapshot, error) {
	dev, ok := s.registry.FindByUID(uid)
	if !ok {
		return entity.AggregateSnapshot{}, ErrDeviceNotFound
	}
	sh := s.shardFor(dev.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	var out entity.AggregateSnapshot
	sh.ledger.each(dev.ID, func(rd entity.Reading) {
		out.TotalCount += rd.Count
		if !out.HasLatest || rd.At > out.Latest {
			out.Latest = rd.At
			out.HasLatest = true
		}
	})
	return out, nil
}

func (s *Store) Stats() StoreStats {
	st := StoreStats{Devices: s.registry.Len()}
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		st.Readings += sh.ledger.len()
		sh.mu.Unlock()
	}
	return st
}

// takeDirty collects full snapshots of devices changed since the last call
// and clears their dirty marks.
func (s *Store) takeDirty() []AggregateRow {
	type item struct {
		id   entity.DeviceID
		snap entity.AggregateSnapshot
	}
	var items []item
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for id := range sh.dirty {
			items = append(items, item{id: id, snap: sh.cache.snapshot(id)})
			delete(sh.dirty, id)
		}
		sh.mu.Unlock()
	}
	rows := make([]AggregateRow, 0, len(items))
	for _, it := range items {
		dev, ok := s.registry.FindByID(it.id)
		if !ok {
			continue
		}
		rows = append(rows, AggregateRow{
			DeviceID:   int64(it.id),
			UID:        dev.UID,
			TotalCount: it.snap.TotalCount,
			LatestTS:   it.snap.LatestTime(),
		})
	}
	return rows
}

// markDirty re-flags devices whose export failed.
func (s *Store) markDirty(rows []AggregateRow) {
	for _, r := range rows {
		id := entity.DeviceID(r.DeviceID)
		sh := s.shardFor(id)
		sh.mu.Lock()
		sh.dirty[id] = struct{}{}
		sh.mu.Unlock()
	}
}

type nopObserver struct{}

func (nopObserver) DeviceRegistered() {}
func (nopObserver) ReadingAccepted()  {}
func (nopObserver) ReadingDuplicate() {}
