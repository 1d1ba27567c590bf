package registry

import (
	"testing"

	"sensorgate/gateway/gwerr"
	"sensorgate/gateway/i2cbus"
	"sensorgate/gateway/linkio"
)

type fakeLinkOpener struct {
	opens int
}

func (f *fakeLinkOpener) Open(busID uint32) (linkio.Handle, error) {
	f.opens++
	return linkio.Handle{}, nil
}

type fakeI2COpener struct {
	opens int
}

func (f *fakeI2COpener) OpenI2C(busID uint32) (*i2cbus.Bus, error) {
	f.opens++
	return i2cbus.New(&nopTransport{}), nil
}

type nopTransport struct{}

func (nopTransport) Transfer(msgs []i2cbus.Message) error {
	for _, m := range msgs {
		if m.Dir == i2cbus.Read {
			for i := range m.Buf {
				m.Buf[i] = 0
			}
		}
	}
	return nil
}

func TestBuildDispatchesSerialAndEnvirophat(t *testing.T) {
	links := &fakeLinkOpener{}
	i2cs := &fakeI2COpener{}
	descs := []Descriptor{
		{PublicID: 1, Name: "a", RouteType: "serial", RouteParam: "0"},
		{PublicID: 2, Name: "b", RouteType: "serial", RouteParam: "0"},
		{PublicID: 3, Name: "c", RouteType: "envirophat", RouteParam: "1"},
	}
	reg, err := Build(descs, links, i2cs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := reg.GetNode(1); err != nil {
		t.Fatalf("GetNode(1): %v", err)
	}
	if _, err := reg.GetNode(2); err != nil {
		t.Fatalf("GetNode(2): %v", err)
	}
	if _, err := reg.GetNode(3); err != nil {
		t.Fatalf("GetNode(3): %v", err)
	}
	if links.opens != 2 {
		t.Fatalf("expected registry to call Open once per serial descriptor, got %d", links.opens)
	}
	if i2cs.opens != 1 {
		t.Fatalf("expected registry to call OpenI2C once per envirophat descriptor, got %d", i2cs.opens)
	}
}

func TestBuildUnknownRouteType(t *testing.T) {
	links := &fakeLinkOpener{}
	i2cs := &fakeI2COpener{}
	descs := []Descriptor{{PublicID: 1, Name: "a", RouteType: "carrier-pigeon", RouteParam: "0"}}
	if _, err := Build(descs, links, i2cs); err == nil {
		t.Fatal("expected error for unknown route type")
	}
}

func TestGetNodeUnknownPublicID(t *testing.T) {
	reg, err := Build(nil, &fakeLinkOpener{}, &fakeI2COpener{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := reg.GetNode(99); err != gwerr.UnknownNode {
		t.Fatalf("err = %v, want UnknownNode", err)
	}
}
