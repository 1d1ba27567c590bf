// Package registry builds the immutable node map (spec §4.6): each
// descriptor is turned into a Serial or EnviroPHat node. Build asks its
// LinkOpener/I2COpener once per descriptor; memoizing the shared link/bus
// handle per physical resource id, so that nodes which route through the
// same port or bus share one underlying worker, is left to the opener.
// Modeled after the teacher's services/hal/internal/registry, generalized
// from adaptor-by-name lookup to route-type dispatch over descriptors.
package registry

import (
	"fmt"
	"strconv"

	"sensorgate/gateway/gwerr"
	"sensorgate/gateway/i2cbus"
	"sensorgate/gateway/linkio"
	"sensorgate/gateway/node"
	"sensorgate/gateway/node/envirophat"
)

// Descriptor is one persisted node row consumed by Build (spec §3's
// NodeDescriptor).
type Descriptor struct {
	ID         int64
	PublicID   uint32
	Name       string
	RouteType  string
	RouteParam string
}

// LinkOpener resolves a serial bus identifier to a shared link handle,
// opening and memoizing the underlying port on first use.
type LinkOpener interface {
	Open(busID uint32) (linkio.Handle, error)
}

// I2COpener resolves an I2C bus identifier to a shared bus handle, opening
// and memoizing the underlying device on first use.
type I2COpener interface {
	OpenI2C(busID uint32) (*i2cbus.Bus, error)
}

// Registry is the immutable public_id -> Node map (spec §4.6).
type Registry struct {
	nodes map[uint32]node.Node
}

// Build constructs a Registry from descs, dispatching on route_type as
// spec §4.6 names: "serial" resolves route_param as a 32-bit bus id via
// links; "envirophat" resolves it as an I2C bus id via i2cs. Any other
// route_type is a ConfigurationError (spec's InvalidRouteType).
func Build(descs []Descriptor, links LinkOpener, i2cs I2COpener) (*Registry, error) {
	nodes := make(map[uint32]node.Node, len(descs))
	for _, d := range descs {
		n, err := buildNode(d, links, i2cs)
		if err != nil {
			return nil, fmt.Errorf("registry: node %d (%s): %w", d.PublicID, d.Name, err)
		}
		nodes[d.PublicID] = n
	}
	return &Registry{nodes: nodes}, nil
}

func buildNode(d Descriptor, links LinkOpener, i2cs I2COpener) (node.Node, error) {
	switch d.RouteType {
	case "serial":
		busID, err := parseBusID(d.RouteParam)
		if err != nil {
			return nil, err
		}
		handle, err := links.Open(busID)
		if err != nil {
			return nil, err
		}
		return node.NewSerialNode(d.PublicID, handle), nil

	case "envirophat":
		busID, err := parseBusID(d.RouteParam)
		if err != nil {
			return nil, err
		}
		bus, err := i2cs.OpenI2C(busID)
		if err != nil {
			return nil, err
		}
		return envirophat.New(bus, envirophat.DefaultConfig())

	default:
		return nil, gwerr.ConfigurationError
	}
}

func parseBusID(param string) (uint32, error) {
	v, err := strconv.ParseUint(param, 10, 32)
	if err != nil {
		return 0, gwerr.ConfigurationError
	}
	return uint32(v), nil
}

// GetNode returns the node bound to publicID, or UnknownNode.
func (r *Registry) GetNode(publicID uint32) (node.Node, error) {
	n, ok := r.nodes[publicID]
	if !ok {
		return nil, gwerr.UnknownNode
	}
	return n, nil
}
