package gpu

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Device is an enumerated device together with its profile.
type Device struct {
	Handle  DeviceHandle
	Profile Profile
}

// Manager handles backend registration, device enumeration and accelerator lifecycle
type Manager struct {
	backends []Backend
	byName   map[string]Backend
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewManager creates a manager over backends. Devices enumerate in backend order.
func NewManager(logger *zap.Logger, backends ...Backend) (*Manager, error) {
	m := &Manager{
		byName: make(map[string]Backend, len(backends)),
		logger: logger.Named("devices"),
	}
	for _, b := range backends {
		if _, dup := m.byName[b.Name()]; dup {
			return nil, fmt.Errorf("backend %q registered twice", b.Name())
		}
		m.byName[b.Name()] = b
		m.backends = append(m.backends, b)
	}
	if len(m.backends) == 0 {
		return nil, fmt.Errorf("no backend available")
	}
	return m, nil
}

// Devices enumerates every backend and keeps the devices matching filter.
// Profile indexes are positions in the unfiltered enumeration, so a device
// keeps its index whatever the filter.
func (m *Manager) Devices(filter []string) ([]Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var devices []Device
	index := 0
	for _, b := range m.backends {
		handles, err := b.Enumerate()
		if err != nil {
			return nil, fmt.Errorf("enumerate %s: %w", b.Name(), err)
		}
		for _, h := range handles {
			p := NewProfile(h, index)
			index++
			if !MatchDevice(p, filter) {
				m.logger.Debug("Device filtered out", zap.String("device", p.Name))
				continue
			}
			devices = append(devices, Device{Handle: h, Profile: p})
		}
	}
	return devices, nil
}

// Open creates an accelerator for h on the backend that enumerated it.
func (m *Manager) Open(h DeviceHandle) (Accelerator, error) {
	m.mu.RLock()
	b, ok := m.byName[h.Backend]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", h.Backend)
	}
	acc, err := b.Create(h)
	if err != nil {
		return nil, fmt.Errorf("create accelerator for %s: %w", h.Info.Name, err)
	}
	return acc, nil
}

// MatchDevice reports whether p is selected by filter. An empty filter selects
// everything; otherwise an entry matches the enumeration index, the class, the
// backend name or a case-insensitive substring of the device name.
func MatchDevice(p Profile, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	name := strings.ToLower(p.Name)
	for _, f := range filter {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if idx, err := strconv.Atoi(f); err == nil {
			if idx == p.Index {
				return true
			}
			continue
		}
		if f == string(p.Class) || f == p.Backend || strings.Contains(name, f) {
			return true
		}
	}
	return false
}
