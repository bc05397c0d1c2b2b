// Package apiserver implements C4: the REST API over a Unix domain socket
// that lets an authenticated caller create, list, get, and delete Bridge
// and VirtualMachine entities.
//
// Grounded on original_source/.../apiserver/{mod,bridges,virtualmachines}.rs
// (actix-web handlers doing list/get/create/delete per kind, JSON bodies,
// DELETE returning an empty body) and on the teacher's
// internal/libvirt/client.go connect-with-context idiom for the listener
// lifecycle. Router: github.com/gorilla/mux.
package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
	"github.com/jbweber/tinyvmm/internal/entity"
)

// Server is the Unix-socket-bound REST API for bridges and virtual
// machines.
type Server struct {
	bridges *entity.Registry[v1alpha1.Bridge]
	vms     *entity.Registry[v1alpha1.VirtualMachine]
	router  *mux.Router
}

// New builds a Server backed by the given registries.
func New(bridges *entity.Registry[v1alpha1.Bridge], vms *entity.Registry[v1alpha1.VirtualMachine]) *Server {
	s := &Server{bridges: bridges, vms: vms, router: mux.NewRouter()}
	s.router.Use(requestLogger)
	s.routes()
	return s
}

// requestLogger tags each request with a short correlation id so a
// multi-line failure (e.g. a create that fails validation) can be traced
// through the log from a single grep.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("apiserver: [%s] %s %s (%s)", id[:8], r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/v1/virtualmachines", s.listVirtualMachines).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/virtualmachines", s.createVirtualMachine).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/virtualmachines/{name}", s.getVirtualMachine).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/virtualmachines/{name}", s.deleteVirtualMachine).Methods(http.MethodDelete)

	s.router.HandleFunc("/api/v1/bridges", s.listBridges).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/bridges", s.createBridge).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/bridges/{name}", s.getBridge).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/bridges/{name}", s.deleteBridge).Methods(http.MethodDelete)
}

// ListenAndServe binds socketPath (removing any stale socket file left
// over from a previous run) and serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, socketPath string) error {
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", socketPath, err)
	}

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", socketPath, err)
	}

	httpSrv := &http.Server{Handler: s.router}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()

	select {
	case <-ctx.Done():
		_ = httpSrv.Close()
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("apiserver: encoding response: %v", err)
	}
}

// writeError maps an entity/store error to the status codes in spec.md's
// error taxonomy table: ValidationFailed/NotAnObject/MissingKey -> 400,
// FailedMigration -> 500, NotFound -> 404, KeyExists -> 409, else 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr  *entity.ValidationError
		notAnObjectErr *entity.NotAnObjectError
		missingKeyErr  *entity.MissingKeyError
		migrationErr   *entity.FailedMigrationError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &notAnObjectErr), errors.As(err, &missingKeyErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &migrationErr):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, entity.ErrKeyExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already exists"})
	default:
		log.Printf("apiserver: internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
