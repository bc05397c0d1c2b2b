package v1alpha1

import "regexp"

const (
	// GroupName is the API group for tinyvmm resources.
	GroupName = "tinyvmm.local"

	// NamePattern matches a DNS-label sequence, used for metadata.name on
	// every kind and for Bridge.Spec.DNSZone.
	NamePattern = `^[a-z0-9]([-a-z0-9]*[a-z0-9])?(\.[a-z0-9]([-a-z0-9]*[a-z0-9])?)*$`
)

var nameRe = regexp.MustCompile(NamePattern)

// ValidName reports whether name matches the DNS-label-sequence pattern
// required of metadata.name (and of Bridge.Spec.DNSZone).
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}
