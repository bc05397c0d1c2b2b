package hostunit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vishvananda/netlink"
)

// ErrLinkNotFound is returned by RemoveNetdev's link-deletion step when the
// kernel has no link by that name — tolerable, per spec.md's error
// taxonomy, since the device may already be gone.
var ErrLinkNotFound = errors.New("hostunit: link not found")

// RemoveNetdev deletes a bridge or tap's .netdev/.network unit files (if
// present), reloads networkd, then deletes the kernel link by name via
// netlink. A missing link is reported as ErrLinkNotFound, which callers
// may treat as success.
func RemoveNetdev(nd *NetworkdClient, name string) error {
	netdevPath := filepath.Join(NetworkdDir, name+".netdev")
	networkPath := filepath.Join(NetworkdDir, name+".network")

	for _, p := range []string{netdevPath, networkPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}

	if err := nd.Reload(); err != nil {
		return err
	}

	link, err := netlink.LinkByName(name)
	if err != nil {
		var lnf netlink.LinkNotFoundError
		if errors.As(err, &lnf) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("looking up link %s: %w", name, err)
	}
	if err := netlink.LinkDel(link); err != nil {
		return fmt.Errorf("deleting link %s: %w", name, err)
	}
	return nil
}
