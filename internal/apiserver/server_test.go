package apiserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
	"github.com/jbweber/tinyvmm/internal/entity"
	"github.com/jbweber/tinyvmm/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	bridges := entity.NewRegistry(s, v1alpha1.NewBridgeKind())
	vms := entity.NewRegistry(s, v1alpha1.NewVirtualMachineKind())
	return New(bridges, vms)
}

func TestCreateAndGetBridge(t *testing.T) {
	srv := newTestServer(t)

	body := `{"apiVersion":"v1alpha1","kind":"Bridge","metadata":{"name":"tvbr0"},"spec":{"address":"10.0.0.1/24","dns_zone":"vm.local","dns_server":"10.0.0.1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bridges", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bridges/tvbr0", nil)
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got v1alpha1.Bridge
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Spec.Address != "10.0.0.1/24" {
		t.Fatalf("Spec.Address = %q", got.Spec.Address)
	}
}

func TestCreateBridgeConflict(t *testing.T) {
	srv := newTestServer(t)
	body := `{"apiVersion":"v1alpha1","kind":"Bridge","metadata":{"name":"tvbr0"},"spec":{"address":"10.0.0.1/24","dns_zone":"vm.local","dns_server":"10.0.0.1"}}`

	for i, wantStatus := range []int{http.StatusOK, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bridges", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		if rec.Code != wantStatus {
			t.Fatalf("attempt %d: status = %d, want %d", i, rec.Code, wantStatus)
		}
	}
}

func TestCreateBridgeValidationFailure(t *testing.T) {
	srv := newTestServer(t)
	body := `{"apiVersion":"v1alpha1","kind":"Bridge","metadata":{"name":"tvbr0"},"spec":{"address":"not-an-ip","dns_zone":"vm.local","dns_server":"10.0.0.1"}}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bridges", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestGetVirtualMachineNotFound(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/virtualmachines/missing", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteVirtualMachineReturnsEmptyBody(t *testing.T) {
	srv := newTestServer(t)

	createBody := `{"apiVersion":"v1alpha3","kind":"VirtualMachine","metadata":{"name":"alpha"},"spec":{"cpus":2,"memory":"2G","disks":["/tmp"],"ip":"10.0.0.10","mac":"66:aa:bb:cc:dd:ee","bridge":"tvbr0"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/virtualmachines", bytes.NewBufferString(createBody))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/virtualmachines/alpha", nil)
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("delete body = %q, want empty", rec.Body.String())
	}
}
