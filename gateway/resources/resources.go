// Package resources opens and memoizes the physical handles the node
// registry binds nodes to: one linkio.Worker per serial bus id, one
// i2cbus.Bus per I2C bus id. Mirrors the teacher's registry pattern of
// lazily constructing and caching a shared handle per physical resource
// rather than per logical node.
package resources

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.bug.st/serial"

	"sensorgate/gateway/gwerr"
	"sensorgate/gateway/i2cbus"
	"sensorgate/gateway/linkio"
)

// PathResolver maps a bus id to its configured device path (spec §6's
// SERIAL_PORT_<N>_PATH / I2C_BUS_<N>_PATH), as loaded by internal/config.
type PathResolver func(busID uint32) (path string, ok bool)

// Manager memoizes serial link handles and I2C bus handles by id, opening
// the underlying device on first use. Safe for concurrent Open calls.
type Manager struct {
	log *slog.Logger

	serialPaths PathResolver
	i2cPaths    PathResolver

	mu     sync.Mutex
	links  map[uint32]linkio.Handle
	busses map[uint32]*i2cbus.Bus
}

// New builds a Manager. Link workers started by a later Open call run on
// context.Background() for the rest of the process lifetime.
func New(log *slog.Logger, serialPaths, i2cPaths PathResolver) *Manager {
	return &Manager{
		log:         log,
		serialPaths: serialPaths,
		i2cPaths:    i2cPaths,
		links:       make(map[uint32]linkio.Handle),
		busses:      make(map[uint32]*i2cbus.Bus),
	}
}

// Open resolves busID to a serial link handle, opening the port and
// starting its link worker on first use (registry.LinkOpener).
func (m *Manager) Open(busID uint32) (linkio.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.links[busID]; ok {
		return h, nil
	}

	path, ok := m.serialPaths(busID)
	if !ok {
		return linkio.Handle{}, fmt.Errorf("resources: serial bus %d: %w", busID, gwerr.ConfigurationError)
	}
	port, err := serial.Open(path, &serial.Mode{BaudRate: 115200})
	if err != nil {
		return linkio.Handle{}, fmt.Errorf("resources: open %s: %w", path, gwerr.ConfigurationError)
	}

	w := linkio.New(port, m.log.With("serial_bus", busID))
	go w.Run(context.Background())
	h := linkio.NewHandle(w)
	m.links[busID] = h
	return h, nil
}

// OpenI2C resolves busID to an I2C bus handle, opening the device on
// first use (registry.I2COpener).
func (m *Manager) OpenI2C(busID uint32) (*i2cbus.Bus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.busses[busID]; ok {
		return b, nil
	}

	path, ok := m.i2cPaths(busID)
	if !ok {
		return nil, fmt.Errorf("resources: i2c bus %d: %w", busID, gwerr.ConfigurationError)
	}
	b, err := i2cbus.OpenLinux(path)
	if err != nil {
		return nil, err
	}
	m.busses[busID] = b
	return b, nil
}
