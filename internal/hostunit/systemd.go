package hostunit

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	systemdDest = "org.freedesktop.systemd1"
	systemdPath = "/org/freedesktop/systemd1"
	systemdIfc  = "org.freedesktop.systemd1.Manager"
)

// SystemdClient proxies org.freedesktop.systemd1.Manager on the system
// bus, the idiomatic Go translation of the original's zbus SystemdProxy.
type SystemdClient struct {
	conn *dbus.Conn
}

// DialSystemd connects to the system bus for systemd unit management.
func DialSystemd() (*SystemdClient, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to system bus: %w", err)
	}
	return &SystemdClient{conn: conn}, nil
}

// Close releases the bus connection.
func (c *SystemdClient) Close() error {
	return c.conn.Close()
}

// LoadUnit asks systemd to load (without starting) the named unit, e.g.
// "tinyvmi-alpha.service".
func (c *SystemdClient) LoadUnit(name string) error {
	obj := c.conn.Object(systemdDest, dbus.ObjectPath(systemdPath))
	var unitPath dbus.ObjectPath
	call := obj.Call(systemdIfc+".LoadUnit", 0, name)
	if call.Err != nil {
		return fmt.Errorf("systemd LoadUnit(%s): %w", name, call.Err)
	}
	return call.Store(&unitPath)
}

// StartUnit asks systemd to start the named unit with the given job mode
// (e.g. "replace").
func (c *SystemdClient) StartUnit(name, mode string) error {
	obj := c.conn.Object(systemdDest, dbus.ObjectPath(systemdPath))
	var jobPath dbus.ObjectPath
	call := obj.Call(systemdIfc+".StartUnit", 0, name, mode)
	if call.Err != nil {
		return fmt.Errorf("systemd StartUnit(%s, %s): %w", name, mode, call.Err)
	}
	return call.Store(&jobPath)
}
