package hypervisor

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

func serveOnUnixSocket(t *testing.T, handler http.Handler) (socketPath string) {
	t.Helper()
	socketPath = filepath.Join(t.TempDir(), "api.sock")
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listening on %s: %v", socketPath, err)
	}
	srv := httptest.NewUnstartedServer(handler)
	srv.Listener = ln
	srv.Start()
	t.Cleanup(srv.Close)
	return socketPath
}

func TestClientCreateSuccess(t *testing.T) {
	var gotPath string
	socketPath := serveOnUnixSocket(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	c := New(socketPath)
	cfg := &VMConfig{CPUs: CPUsConfig{BootVCPUs: 2, MaxVCPUs: 2}}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Create(ctx, cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if gotPath != "/api/v1/vm.create" {
		t.Fatalf("request path = %q", gotPath)
	}
}

func TestClientCreateNonSuccessNotRetried(t *testing.T) {
	calls := 0
	socketPath := serveOnUnixSocket(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad config"))
	}))

	c := New(socketPath)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.Create(ctx, &VMConfig{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := err.(*HTTPNoSuccessError); !ok {
		t.Fatalf("error = %#v, want *HTTPNoSuccessError", err)
	}
	if calls != 1 {
		t.Fatalf("handler called %d times, want 1 (non-2xx must not be retried)", calls)
	}
}

func TestClientBoot(t *testing.T) {
	socketPath := serveOnUnixSocket(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/vm.boot" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	c := New(socketPath)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Boot(ctx); err != nil {
		t.Fatalf("Boot: %v", err)
	}
}
