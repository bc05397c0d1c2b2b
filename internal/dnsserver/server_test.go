package dnsserver

import (
	"testing"

	"github.com/miekg/dns"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
)

func TestReconcileAndServeDNS(t *testing.T) {
	s := New()

	bridges := map[string]*v1alpha1.Bridge{
		"tvbr0": {
			ObjectMeta: v1alpha1.ObjectMeta{Name: "tvbr0"},
			Spec:       v1alpha1.BridgeSpec{Address: "10.0.0.1/24", DNSZone: "vm.local", DNSServer: "10.0.0.1"},
		},
	}
	vms := map[string]*v1alpha1.VirtualMachine{
		"alpha": {
			ObjectMeta: v1alpha1.ObjectMeta{Name: "alpha"},
			Spec:       v1alpha1.VirtualMachineSpec{IP: "10.0.0.10", Bridge: "tvbr0"},
		},
		"orphan": {
			ObjectMeta: v1alpha1.ObjectMeta{Name: "orphan"},
			Spec:       v1alpha1.VirtualMachineSpec{IP: "10.0.0.20", Bridge: "missing-bridge"},
		},
	}

	s.Reconcile(bridges, vms)

	req := new(dns.Msg)
	req.SetQuestion("alpha.vm.local.", dns.TypeA)

	rec := &recordingWriter{}
	s.ServeDNS(rec, req)

	if rec.msg == nil || len(rec.msg.Answer) != 1 {
		t.Fatalf("got %#v, want exactly one answer", rec.msg)
	}
	a, ok := rec.msg.Answer[0].(*dns.A)
	if !ok {
		t.Fatalf("answer is not an A record: %#v", rec.msg.Answer[0])
	}
	if a.A.String() != "10.0.0.10" {
		t.Fatalf("A record = %s, want 10.0.0.10", a.A.String())
	}
}

func TestReconcileSkipsOrphanVM(t *testing.T) {
	s := New()
	s.Reconcile(
		map[string]*v1alpha1.Bridge{},
		map[string]*v1alpha1.VirtualMachine{
			"orphan": {
				ObjectMeta: v1alpha1.ObjectMeta{Name: "orphan"},
				Spec:       v1alpha1.VirtualMachineSpec{IP: "10.0.0.20", Bridge: "missing-bridge"},
			},
		},
	)

	req := new(dns.Msg)
	req.SetQuestion("orphan.vm.local.", dns.TypeA)
	rec := &recordingWriter{}
	s.ServeDNS(rec, req)

	if rec.msg != nil && len(rec.msg.Answer) != 0 {
		t.Fatalf("expected no answers for an orphan VM, got %d", len(rec.msg.Answer))
	}
}

// recordingWriter is a minimal dns.ResponseWriter that captures the
// written message for assertions, avoiding a real UDP socket in tests.
type recordingWriter struct {
	dns.ResponseWriter
	msg *dns.Msg
}

func (w *recordingWriter) WriteMsg(m *dns.Msg) error {
	w.msg = m
	return nil
}
