// Package dnsserver implements C8: an in-memory authoritative DNS server
// whose zones are rebuilt wholesale from the store on every watch event.
//
// Grounded on original_source/.../dns/{mod,error}.rs (an Arc<Mutex<...>>
// catalog of per-zone authorities, rebuilt on every store watch event,
// upserting one A record per VM). Go translation: github.com/miekg/dns for
// the wire protocol, a sync.RWMutex-guarded map[zone][]dns.RR standing in
// for the original's Catalog/InMemoryAuthority pair.
package dnsserver

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/miekg/dns"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
)

// recordTTL is the TTL applied to every synthesized A record, matching
// spec.md's "ttl: 500".
const recordTTL = 500

// Server is an authoritative DNS server whose answer set is rebuilt
// wholesale on every Reconcile call.
type Server struct {
	mu    sync.RWMutex
	zones map[string][]dns.RR // zone (with trailing dot) -> A records
}

// New returns an empty Server; call Reconcile before serving.
func New() *Server {
	return &Server{zones: make(map[string][]dns.RR)}
}

// Reconcile rebuilds every zone from the current bridges and VMs: one
// (possibly empty) zone per bridge's dns_zone, with one A record per VM
// whose spec.bridge matches that bridge, owned by "<vm.name>.<zone>.".
//
// The lock is held only across this in-memory swap, never across I/O —
// callers pass in already-loaded snapshots.
func (s *Server) Reconcile(bridges map[string]*v1alpha1.Bridge, vms map[string]*v1alpha1.VirtualMachine) {
	zones := make(map[string][]dns.RR, len(bridges))

	for _, b := range bridges {
		origin := dns.Fqdn(b.Spec.DNSZone)
		zones[origin] = nil
	}

	for _, vm := range vms {
		bridge, ok := bridges[vm.Spec.Bridge]
		if !ok {
			continue // spec.md: silently skip VMs whose bridge is missing.
		}
		origin := dns.Fqdn(bridge.Spec.DNSZone)
		owner := fmt.Sprintf("%s.%s", vm.ObjectMeta.Name, origin)
		rr := &dns.A{
			Hdr: dns.RR_Header{Name: owner, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: recordTTL},
			A:   net.ParseIP(vm.Spec.IP).To4(),
		}
		zones[origin] = append(zones[origin], rr)
	}

	s.mu.Lock()
	s.zones = zones
	s.mu.Unlock()
}

// ServeDNS answers a query by looking up the owner name across every
// known zone.
func (s *Server) ServeDNS(w dns.ResponseWriter, r *dns.Msg) {
	m := new(dns.Msg)
	m.SetReply(r)
	m.Authoritative = true

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range r.Question {
		if q.Qtype != dns.TypeA {
			continue
		}
		for zone, records := range s.zones {
			if !dns.IsSubDomain(zone, q.Name) {
				continue
			}
			for _, rr := range records {
				if rr.Header().Name == q.Name {
					m.Answer = append(m.Answer, rr)
				}
			}
		}
	}

	_ = w.WriteMsg(m)
}

// ListenAndServe binds addr (host:port) for UDP and serves until ctx is
// canceled, mirroring apiserver.Server.ListenAndServe's shutdown idiom.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &dns.Server{Addr: addr, Net: "udp", Handler: s}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.ShutdownContext(ctx)
	case err := <-errCh:
		return err
	}
}

