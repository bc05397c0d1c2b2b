package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateGetDelete(t *testing.T) {
	s := openTestStore(t)

	if err := s.Create("Bridge", "tvbr0", []byte(`{"name":"tvbr0"}`)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get("Bridge", "tvbr0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"name":"tvbr0"}` {
		t.Fatalf("Get returned %q", got)
	}

	if err := s.Delete("Bridge", "tvbr0"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := s.Get("Bridge", "tvbr0"); err != ErrNotFound {
		t.Fatalf("Get after delete: want ErrNotFound, got %v", err)
	}
}

func TestCreateConflict(t *testing.T) {
	s := openTestStore(t)

	if err := s.Create("Bridge", "tvbr0", []byte("a")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create("Bridge", "tvbr0", []byte("b")); err != ErrKeyExists {
		t.Fatalf("second Create: want ErrKeyExists, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := openTestStore(t)

	if err := s.Create("VirtualMachine", "alpha", []byte("a")); err != nil {
		t.Fatalf("Create alpha: %v", err)
	}
	if err := s.Create("VirtualMachine", "beta", []byte("b")); err != nil {
		t.Fatalf("Create beta: %v", err)
	}
	if err := s.Create("Bridge", "tvbr0", []byte("c")); err != nil {
		t.Fatalf("Create tvbr0: %v", err)
	}

	vms, err := s.List("VirtualMachine")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(vms) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(vms))
	}
	if string(vms["alpha"]) != "a" || string(vms["beta"]) != "b" {
		t.Fatalf("List contents wrong: %#v", vms)
	}
}

func TestDeleteNotFound(t *testing.T) {
	s := openTestStore(t)
	if err := s.Delete("Bridge", "missing"); err != ErrNotFound {
		t.Fatalf("Delete missing: want ErrNotFound, got %v", err)
	}
}

func TestWatchObservesCreateAndDelete(t *testing.T) {
	s := openTestStore(t)

	events, cancel := s.Watch("/", 4)
	defer cancel()

	if err := s.Create("Bridge", "tvbr0", []byte("x")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete("Bridge", "tvbr0"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Op != OpPut || ev.Key != "/Bridge/tvbr0" {
			t.Fatalf("first event = %+v, want Put /Bridge/tvbr0", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for put event")
	}

	select {
	case ev := <-events:
		if ev.Op != OpDelete || ev.Key != "/Bridge/tvbr0" {
			t.Fatalf("second event = %+v, want Delete /Bridge/tvbr0", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delete event")
	}
}

func TestWatchPrefixFilter(t *testing.T) {
	s := openTestStore(t)

	events, cancel := s.Watch("/VirtualMachine/", 4)
	defer cancel()

	if err := s.Create("Bridge", "tvbr0", []byte("x")); err != nil {
		t.Fatalf("Create bridge: %v", err)
	}
	if err := s.Create("VirtualMachine", "alpha", []byte("y")); err != nil {
		t.Fatalf("Create vm: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Key != "/VirtualMachine/alpha" {
			t.Fatalf("event = %+v, want only the VirtualMachine create", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}
