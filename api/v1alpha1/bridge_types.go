package v1alpha1

import (
	"fmt"

	"github.com/jbweber/tinyvmm/internal/validate"
)

// BridgeKind is the literal kind name for a Bridge entity.
const BridgeKind = "Bridge"

// BridgeAPIVersion is the only schema version a Bridge ever has.
const BridgeAPIVersion = "v1alpha1"

// BridgeSpec describes a host network segment: its own address, the DNS
// zone it serves, and the DNS server address advertised to DHCP clients.
type BridgeSpec struct {
	Address   string `json:"address" yaml:"address"`
	DNSZone   string `json:"dns_zone" yaml:"dns_zone"`
	DNSServer string `json:"dns_server" yaml:"dns_server"`
}

// Bridge is the full envelope persisted for a Bridge entity. It has only
// one schema version, so there is no migration chain.
type Bridge struct {
	TypeMeta   `json:",inline" yaml:",inline"`
	ObjectMeta ObjectMeta `json:"metadata" yaml:"metadata"`
	Spec       BridgeSpec `json:"spec" yaml:"spec"`
}

// Validate checks b's metadata and spec against the kind's field schema.
func (b *Bridge) Validate() error {
	if !ValidName(b.ObjectMeta.Name) {
		return fmt.Errorf("metadata.name %q does not match the name pattern", b.ObjectMeta.Name)
	}
	if !validate.CIDR(b.Spec.Address) {
		return fmt.Errorf("spec.address %q is not an IPv4 CIDR", b.Spec.Address)
	}
	if !ValidName(b.Spec.DNSZone) {
		return fmt.Errorf("spec.dns_zone %q does not match the name pattern", b.Spec.DNSZone)
	}
	if !validate.IPv4(b.Spec.DNSServer) {
		return fmt.Errorf("spec.dns_server %q is not an IPv4 address", b.Spec.DNSServer)
	}
	return nil
}

// DeepCopy returns a deep copy of b.
func (b *Bridge) DeepCopy() *Bridge {
	if b == nil {
		return nil
	}
	cp := *b
	cp.TypeMeta = b.TypeMeta.DeepCopy()
	cp.ObjectMeta = b.ObjectMeta.DeepCopy()
	return &cp
}
