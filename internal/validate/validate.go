// Package validate holds the regex and predicate checks shared by every
// entity kind's field validation schema: IPv4 addresses and CIDRs, memory
// size strings, MAC addresses, and disk-path existence.
package validate

import (
	"fmt"
	"os"
	"regexp"
)

var (
	cidrRe   = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+/\d+$`)
	ipv4Re   = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)
	memoryRe = regexp.MustCompile(`^\d+(M|G)$`)
	macRe    = regexp.MustCompile(`^([0-9a-f]{2}:){5}[0-9a-f]{2}$`)
)

// CIDR reports whether s is an IPv4 CIDR of the form a.b.c.d/n.
func CIDR(s string) bool { return cidrRe.MatchString(s) }

// IPv4 reports whether s is a dotted-decimal IPv4 address.
func IPv4(s string) bool { return ipv4Re.MatchString(s) }

// Memory reports whether s is a decimal size in megabytes or gigabytes,
// e.g. "512M" or "2G".
func Memory(s string) bool { return memoryRe.MatchString(s) }

// MAC reports whether s is a lowercase colon-separated hex MAC address.
func MAC(s string) bool { return macRe.MatchString(s) }

// DiskPaths checks that every path in paths exists on the host filesystem.
// It returns the first missing path wrapped in an error, or nil.
func DiskPaths(paths []string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("disk path %q does not exist: %w", p, err)
		}
	}
	return nil
}
