// Package naming derives host-visible names from VM identity: the
// spec-mandated tap interface name (sha256-derived, grounded on
// original_source's ch/mod.rs::get_vm_tap_name), plus the teacher's
// IP-derived MAC/interface scheme, kept as an alternate legacy naming path
// (see DESIGN.md).
package naming

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
)

// TapName derives a VM's tap interface name: "vmi" plus the first 8 bytes
// of the VM name plus the first 5 hex characters of sha256(name). The
// result is at most 16 bytes long (3 + 8 + 5).
func TapName(vmName string) string {
	sum := sha256.Sum256([]byte(vmName))
	prefix := vmName
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return "vmi" + prefix + hex.EncodeToString(sum[:])[:5]
}

// MACFromIP calculates a deterministic MAC address from an IP address,
// using the locally-administered be:ef: prefix. This is the teacher's
// legacy IP-derived scheme, retained as an alternate to the spec's
// default-random VM MAC (v1alpha1.DefaultMAC).
//
// Example: IP 10.55.22.22 → MAC be:ef:0a:37:16:16
func MACFromIP(ip string) (string, error) {
	ipv4, err := parseIPv4(ip)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("be:ef:%02x:%02x:%02x:%02x", ipv4[0], ipv4[1], ipv4[2], ipv4[3]), nil
}

// InterfaceNameFromIP calculates a deterministic interface name from an IP
// address. Format: vm{8 hex digits}. This is the teacher's legacy
// IP-derived scheme; TapName is the spec-mandated default.
//
// Example: IP 10.55.22.22 → vm0a371616
func InterfaceNameFromIP(ip string) (string, error) {
	ipv4, err := parseIPv4(ip)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("vm%02x%02x%02x%02x", ipv4[0], ipv4[1], ipv4[2], ipv4[3]), nil
}

func parseIPv4(ip string) (net.IP, error) {
	ipStr := ip
	if strings.Contains(ip, "/") {
		ipAddr, _, err := net.ParseCIDR(ip)
		if err != nil {
			return nil, fmt.Errorf("invalid IP/CIDR: %w", err)
		}
		ipStr = ipAddr.String()
	}

	parsedIP := net.ParseIP(ipStr)
	if parsedIP == nil {
		return nil, fmt.Errorf("invalid IP address: %s", ipStr)
	}

	ipv4 := parsedIP.To4()
	if ipv4 == nil {
		return nil, fmt.Errorf("not an IPv4 address: %s", ipStr)
	}
	return ipv4, nil
}
