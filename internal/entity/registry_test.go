package entity_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
	"github.com/jbweber/tinyvmm/internal/entity"
	"github.com/jbweber/tinyvmm/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRegistryCreateGet(t *testing.T) {
	s := openTestStore(t)
	reg := entity.NewRegistry(s, v1alpha1.NewBridgeKind())

	diskPath := filepath.Join(t.TempDir(), "d.img")
	if err := os.WriteFile(diskPath, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	b := &v1alpha1.Bridge{
		TypeMeta:   v1alpha1.TypeMeta{Kind: v1alpha1.BridgeKind, APIVersion: v1alpha1.BridgeAPIVersion},
		ObjectMeta: v1alpha1.ObjectMeta{Name: "tvbr0"},
		Spec: v1alpha1.BridgeSpec{
			Address:   "10.0.0.1/24",
			DNSZone:   "vm.local",
			DNSServer: "10.0.0.1",
		},
	}

	if err := reg.Create(b); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := reg.Get("tvbr0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Spec.Address != "10.0.0.1/24" {
		t.Fatalf("Spec.Address = %q", got.Spec.Address)
	}

	if err := reg.Create(b); err != entity.ErrKeyExists {
		t.Fatalf("second Create: want ErrKeyExists, got %v", err)
	}
}

func TestRegistryMigratesVirtualMachineOnRead(t *testing.T) {
	s := openTestStore(t)
	reg := entity.NewRegistry(s, v1alpha1.NewVirtualMachineKind())

	raw := map[string]any{
		"apiVersion": v1alpha1.VirtualMachineV1alpha1,
		"kind":       v1alpha1.VirtualMachineKind,
		"metadata":   map[string]any{"name": "old"},
		"spec": map[string]any{
			"cpus":   1,
			"memory": "1G",
			"disk":   "/tmp/d.img",
			"ip":     "10.0.0.11",
			"mac":    "66:00:00:00:00:01",
		},
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Create(v1alpha1.VirtualMachineKind, "old", data); err != nil {
		t.Fatalf("seeding raw v1alpha1 entity: %v", err)
	}

	got, err := reg.Get("old")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.APIVersion != v1alpha1.VirtualMachineV1alpha3 {
		t.Fatalf("APIVersion = %q, want %s", got.APIVersion, v1alpha1.VirtualMachineV1alpha3)
	}
	if got.Spec.Bridge != v1alpha1.LegacyDefaultBridge {
		t.Fatalf("Spec.Bridge = %q, want %s", got.Spec.Bridge, v1alpha1.LegacyDefaultBridge)
	}
	if len(got.Spec.Disks) != 1 || got.Spec.Disks[0] != "/tmp/d.img" {
		t.Fatalf("Spec.Disks = %#v", got.Spec.Disks)
	}
}

func TestRegistryDeleteNotFound(t *testing.T) {
	s := openTestStore(t)
	reg := entity.NewRegistry(s, v1alpha1.NewBridgeKind())

	if err := reg.Delete("missing"); err != entity.ErrNotFound {
		t.Fatalf("Delete missing: want ErrNotFound, got %v", err)
	}
}
