package service

import (
	"sync"

	"github.com/dayanaadylkhanova/device-readings/internal/entity"
)

// Registry assigns sequential ids to device uids. Devices live in an arena
// indexed by id-1 and are never removed.
type Registry struct {
	mu       sync.RWMutex
	devices  []entity.Device
	byUID    map[string]entity.DeviceID
	onCreate func(entity.Device)
}

// NewRegistry returns an empty registry. onCreate, if set, runs under the
// registry lock right after a device is stored.
func NewRegistry(onCreate func(entity.Device)) *Registry {
	return &Registry{
		byUID:    make(map[string]entity.DeviceID, 1024),
		onCreate: onCreate,
	}
}

func (r *Registry) FindByUID(uid string) (entity.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(uid)
}

func (r *Registry) FindByID(id entity.DeviceID) (entity.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id <= 0 || int(id) > len(r.devices) {
		return entity.Device{}, false
	}
	return r.devices[id-1], true
}

// Create stores a new device or fails with ErrDuplicateUID.
func (r *Registry) Create(uid string) (entity.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lookupLocked(uid); ok {
		return entity.Device{}, ErrDuplicateUID
	}
	return r.createLocked(uid), nil
}

// FindOrCreate returns the device for uid, creating it if needed. Concurrent
// callers with the same unseen uid observe exactly one creation.
func (r *Registry) FindOrCreate(uid string) (dev entity.Device, created bool) {
	if dev, ok := r.FindByUID(uid); ok {
		return dev, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if dev, ok := r.lookupLocked(uid); ok {
		return dev, false
	}
	return r.createLocked(uid), true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

func (r *Registry) lookupLocked(uid string) (entity.Device, bool) {
	id, ok := r.byUID[uid]
	if !ok {
		return entity.Device{}, false
	}
	return r.devices[id-1], true
}

func (r *Registry) createLocked(uid string) entity.Device {
	dev := entity.Device{ID: entity.DeviceID(len(r.devices) + 1), UID: uid}
	r.devices = append(r.devices, dev)
	r.byUID[uid] = dev.ID
	if r.onCreate != nil {
		r.onCreate(dev)
	}
	return dev
}
