// Package hypervisor is the per-VM client (C7): it drives the
// cloud-hypervisor process through its Unix-socket HTTP API to create and
// control a single guest.
//
// Grounded on original_source/.../ch/{bootstrap,runtime}.rs (PUT over a
// Unix socket to /api/v1/vm.create, vm.boot, vm.power-button; exponential
// backoff on vm.create only; socket-disappearance poll on stop), and on the
// teacher's internal/libvirt/client.go connect/timeout idiom.
package hypervisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// HTTPNoSuccessError is returned when the hypervisor responds with a
// non-2xx status, matching the original's HttpNoSuccess(status, body).
type HTTPNoSuccessError struct {
	Status int
	Body   string
}

func (e *HTTPNoSuccessError) Error() string {
	return fmt.Sprintf("hypervisor returned %d: %s", e.Status, e.Body)
}

// Client talks to one VM's cloud-hypervisor process over its per-VM Unix
// socket.
type Client struct {
	socketPath string
	http       *http.Client
}

// New builds a Client for the hypervisor listening on socketPath (by
// convention /run/tinyvmi-<name>/api.sock).
func New(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
		},
	}
}

func (c *Client) put(ctx context.Context, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, "http://unix"+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("host", "localhost")
	req.Header.Set("accept", "*/*")
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("PUT %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &HTTPNoSuccessError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}

// Create issues vm.create with cfg as the JSON body, retrying connect and
// request errors with exponential backoff up to a 60s max elapsed time —
// the hypervisor's socket may not be listening yet when bootstrap-post
// runs immediately after ExecStart.
func (c *Client) Create(ctx context.Context, cfg *VMConfig) error {
	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling vm.create body: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 60 * time.Second

	return backoff.Retry(func() error {
		err := c.put(ctx, "/api/v1/vm.create", body)
		if err == nil {
			return nil
		}
		// A non-2xx response is a definite answer from a live hypervisor,
		// not a connection failure; don't retry it.
		if noSuccess, ok := err.(*HTTPNoSuccessError); ok {
			return backoff.Permanent(noSuccess)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

// Boot issues vm.boot with an empty body. Unretried, per spec.md.
func (c *Client) Boot(ctx context.Context) error {
	return c.put(ctx, "/api/v1/vm.boot", nil)
}

// PowerButton issues vm.power-button with an empty body, then polls for up
// to 240 seconds (sleeping 1s between probes) for the VM's socket to
// disappear, which signals the hypervisor process has exited. Unretried.
func (c *Client) PowerButton(ctx context.Context) error {
	if err := c.put(ctx, "/api/v1/vm.power-button", nil); err != nil {
		return err
	}

	for i := 0; i < 240; i++ {
		if _, err := os.Stat(c.socketPath); os.IsNotExist(err) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return nil
}
