// Package reconciler implements C5: the level-triggered controller that
// watches the store and, on every event, rebuilds the desired host
// artifacts for every bridge and VM, delegating the actual writes and bus
// calls to internal/hostunit.
//
// Grounded on original_source/.../unitserver/{mod,bridges,virtualmachines}.rs
// (single watch subscription, full-snapshot reconcile pass, per-kind
// log-and-continue error policy) and on the teacher's internal/vm/create.go
// step-logging texture.
package reconciler

import (
	"context"
	"log"
	"net"
	"path/filepath"
	"strings"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
	"github.com/jbweber/tinyvmm/internal/entity"
	"github.com/jbweber/tinyvmm/internal/hostunit"
	"github.com/jbweber/tinyvmm/internal/store"
	"github.com/jbweber/tinyvmm/internal/unitrender"
)

// networkdReloader is the slice of *hostunit.NetworkdClient the reconciler
// needs; an interface so tests can substitute a fake system bus.
type networkdReloader interface {
	Reload() error
}

// systemdUnitManager is the slice of *hostunit.SystemdClient the
// reconciler needs.
type systemdUnitManager interface {
	LoadUnit(name string) error
	StartUnit(name, mode string) error
}

// Reconciler rebuilds networkd and systemd unit files for every bridge and
// VM currently in the store.
type Reconciler struct {
	bridges    *entity.Registry[v1alpha1.Bridge]
	vms        *entity.Registry[v1alpha1.VirtualMachine]
	networkd   networkdReloader
	systemd    systemdUnitManager
	selfExe    string
	networkDir string
	systemdDir string
}

// Option customizes a Reconciler built by New.
type Option func(*Reconciler)

// WithUnitDirs overrides the default /run/systemd/{network,system}
// directories, for tests that cannot write there.
func WithUnitDirs(networkDir, systemdDir string) Option {
	return func(r *Reconciler) {
		r.networkDir = networkDir
		r.systemdDir = systemdDir
	}
}

// New builds a Reconciler. selfExe is the absolute path to this binary,
// embedded into the generated ExecStartPost/ExecStop lines.
func New(
	bridges *entity.Registry[v1alpha1.Bridge],
	vms *entity.Registry[v1alpha1.VirtualMachine],
	networkd networkdReloader,
	systemd systemdUnitManager,
	selfExe string,
	opts ...Option,
) *Reconciler {
	r := &Reconciler{
		bridges:    bridges,
		vms:        vms,
		networkd:   networkd,
		systemd:    systemd,
		selfExe:    selfExe,
		networkDir: hostunit.NetworkdDir,
		systemdDir: hostunit.SystemdDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives the level-triggered reconcile loop: one pass at startup, one
// more per coalesced watch event, until ctx is canceled or events closes.
func (r *Reconciler) Run(ctx context.Context, events <-chan store.Event) error {
	pending := make(chan struct{}, 1)
	pending <- struct{}{}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			log.Printf("reconciler: observed %s on %s", opString(ev.Op), ev.Key)
			select {
			case pending <- struct{}{}:
			default:
			}
		case <-pending:
			r.reconcileOnce()
		}
	}
}

func opString(op store.Op) string {
	if op == store.OpDelete {
		return "delete"
	}
	return "put"
}

// reconcileOnce is one full pass: load everything, reconcile every bridge,
// then every VM whose spec.bridge names an existing bridge (VMs without one
// are skipped). Per-item errors are logged; the pass never aborts.
func (r *Reconciler) reconcileOnce() {
	bridges := r.bridges.ListTolerant(func(name string, err error) {
		log.Printf("reconciler: failed to load bridge %q: %v", name, err)
	})
	vms := r.vms.ListTolerant(func(name string, err error) {
		log.Printf("reconciler: failed to load VM %q: %v", name, err)
	})

	for _, b := range bridges {
		if err := r.reconcileBridge(b, vms); err != nil {
			log.Printf("reconciler: bridge %q: %v", b.ObjectMeta.Name, err)
		}
	}
	for _, vm := range vms {
		if _, ok := bridges[vm.Spec.Bridge]; !ok {
			continue
		}
		if err := r.reconcileVM(vm); err != nil {
			log.Printf("reconciler: vm %q: %v", vm.ObjectMeta.Name, err)
		}
	}
}

func (r *Reconciler) reconcileBridge(b *v1alpha1.Bridge, vms map[string]*v1alpha1.VirtualMachine) error {
	name := b.ObjectMeta.Name

	var leases []unitrender.Lease
	for _, vm := range vms {
		if vm.Spec.Bridge == name {
			leases = append(leases, unitrender.Lease{MAC: vm.Spec.MAC, IP: vm.Spec.IP})
		}
	}

	netdevBody, err := unitrender.BridgeNetdev(name)
	if err != nil {
		return err
	}
	networkBody, err := unitrender.BridgeNetwork(name, b.Spec.Address, b.Spec.DNSServer, b.Spec.DNSZone, bridgeRouterIP(b.Spec.Address), leases)
	if err != nil {
		return err
	}

	netdevPath := filepath.Join(r.networkDir, name+".netdev")
	networkPath := filepath.Join(r.networkDir, name+".network")

	netdevDiff, netdevErr := hostunit.Differs(netdevPath, netdevBody)
	networkDiff, networkErr := hostunit.Differs(networkPath, networkBody)

	if !(netdevDiff || networkDiff || netdevErr != nil || networkErr != nil) {
		return nil
	}

	if err := hostunit.WriteUnit(netdevPath, netdevBody); err != nil {
		return err
	}
	if err := hostunit.WriteUnit(networkPath, networkBody); err != nil {
		return err
	}
	return r.networkd.Reload()
}

func (r *Reconciler) reconcileVM(vm *v1alpha1.VirtualMachine) error {
	name := vm.ObjectMeta.Name
	vmUnit := unitrender.VMUnitName(name)
	tapUnit := unitrender.TapUnitName(name)

	vmBody, err := unitrender.VMService(name, vm.Spec.Bridge, tapUnit, r.selfExe)
	if err != nil {
		return err
	}
	tapBody, err := unitrender.TapService(name, vmUnit, r.selfExe)
	if err != nil {
		return err
	}

	vmPath := filepath.Join(r.systemdDir, vmUnit+".service")
	tapPath := filepath.Join(r.systemdDir, tapUnit+".service")

	vmDiff, vmErr := hostunit.Differs(vmPath, vmBody)
	tapDiff, tapErr := hostunit.Differs(tapPath, tapBody)

	if !(vmDiff || tapDiff || vmErr != nil || tapErr != nil) {
		return nil
	}

	if err := hostunit.WriteUnit(vmPath, vmBody); err != nil {
		return err
	}
	if err := hostunit.WriteUnit(tapPath, tapBody); err != nil {
		return err
	}

	unitName := vmUnit + ".service"
	if err := r.systemd.LoadUnit(unitName); err != nil {
		return err
	}
	return r.systemd.StartUnit(unitName, "replace")
}

// bridgeRouterIP extracts the address portion of a CIDR (the bridge's own
// address, advertised as the DHCP router), matching the original's
// address.addr() on the parsed ipnet::Ipv4Net.
func bridgeRouterIP(cidr string) string {
	ip, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return strings.SplitN(cidr, "/", 2)[0]
	}
	return ip.String()
}
