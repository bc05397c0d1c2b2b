package hostunit

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	networkdDest = "org.freedesktop.network1"
	networkdPath = "/org/freedesktop/network1"
	networkdIfc  = "org.freedesktop.network1.Manager"
)

// NetworkdClient proxies org.freedesktop.network1.Manager on the system
// bus, the idiomatic Go translation of the original's zbus NetworkdProxy.
type NetworkdClient struct {
	conn *dbus.Conn
}

// DialNetworkd connects to the system bus for networkd management calls.
func DialNetworkd() (*NetworkdClient, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to system bus: %w", err)
	}
	return &NetworkdClient{conn: conn}, nil
}

// Close releases the bus connection.
func (c *NetworkdClient) Close() error {
	return c.conn.Close()
}

// Reload asks networkd to reload its configuration, picking up any
// .netdev/.network files written since the last reload.
func (c *NetworkdClient) Reload() error {
	obj := c.conn.Object(networkdDest, dbus.ObjectPath(networkdPath))
	call := obj.Call(networkdIfc+".Reload", 0)
	if call.Err != nil {
		return fmt.Errorf("networkd Reload: %w", call.Err)
	}
	return nil
}

// GetLinkByName resolves a link's ifindex and its networkd D-Bus object
// path, per spec.md §6's GetLinkByName.
func (c *NetworkdClient) GetLinkByName(name string) (ifindex int32, path dbus.ObjectPath, err error) {
	obj := c.conn.Object(networkdDest, dbus.ObjectPath(networkdPath))
	call := obj.Call(networkdIfc+".GetLinkByName", 0, name)
	if call.Err != nil {
		return 0, "", fmt.Errorf("networkd GetLinkByName(%s): %w", name, call.Err)
	}
	if err := call.Store(&ifindex, &path); err != nil {
		return 0, "", fmt.Errorf("networkd GetLinkByName(%s): %w", name, err)
	}
	return ifindex, path, nil
}

// DescribeLink returns networkd's current JSON description of a link,
// per spec.md §6's DescribeLink.
func (c *NetworkdClient) DescribeLink(name string) (string, error) {
	_, linkPath, err := c.GetLinkByName(name)
	if err != nil {
		return "", err
	}
	obj := c.conn.Object(networkdDest, linkPath)
	call := obj.Call("org.freedesktop.network1.Link.Describe", 0)
	if call.Err != nil {
		return "", fmt.Errorf("networkd Describe(%s): %w", name, call.Err)
	}
	var description string
	if err := call.Store(&description); err != nil {
		return "", fmt.Errorf("networkd Describe(%s): %w", name, err)
	}
	return description, nil
}
