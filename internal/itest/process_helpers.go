// If you are AI: This file provides helper functions for building and running framerelay processes in tests.

package itest

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

// buildBinary compiles cmd/framerelay into a temp dir and returns its path.
func buildBinary(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "framerelay")
	buildCmd := exec.Command("go", "build", "-o", binPath, "../../cmd/framerelay")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, out)
	}
	return binPath
}

// findFreePort returns a TCP port nothing is listening on.
func findFreePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return port
}

// writeConfig writes a small-frame configuration for the given port and region.
func writeConfig(t *testing.T, port int, region string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "framerelay.yaml")
	content := fmt.Sprintf(`server:
  status_port: %d
  stats_interval: 100ms
transport:
  chunk_size: 65536
frame:
  width: 320
  height: 240
  fps: 120
region:
  name: %s
log:
  level: debug
`, port, region)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return configPath
}

// startProcess runs the binary with a config and role. The process gets SIGINT at cleanup
// if the test has not stopped it.
func startProcess(t *testing.T, binPath, configPath, role string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command(binPath, "-config", configPath, "-role", role, "-env", filepath.Join(t.TempDir(), "none.env"))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start %s: %v", role, err)
	}
	t.Cleanup(func() {
		if cmd.ProcessState == nil {
			cmd.Process.Signal(syscall.SIGINT)
			cmd.Wait()
		}
	})
	return cmd
}

// stopProcess sends SIGINT and waits for a clean exit.
func stopProcess(t *testing.T, cmd *exec.Cmd, timeout time.Duration) {
	t.Helper()
	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("Failed to send SIGINT: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Process exited with error: %v", err)
		}
	case <-time.After(timeout):
		cmd.Process.Kill()
		t.Fatalf("Process did not exit within %v", timeout)
	}
}

// WaitForHealth waits for the health endpoint to become available.
// Returns an error if the endpoint is not available within the timeout.
func WaitForHealth(port int, timeout time.Duration) error {
	return waitForStatus(port, "/healthz", timeout)
}

// WaitForReady waits for /readyz, which reports ready once relay endpoints are registered.
func WaitForReady(port int, timeout time.Duration) error {
	return waitForStatus(port, "/readyz", timeout)
}

// waitForStatus polls path until it returns 200.
func waitForStatus(port int, path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://localhost:%d%s", port, path)

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("%s not available after %v", path, timeout)
}

// getJSON fetches path and decodes the body into v.
func getJSON(t *testing.T, port int, path string, v interface{}) {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d%s", port, path))
	if err != nil {
		t.Fatalf("Failed to query %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s: expected status 200, got %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("%s: failed to decode response: %v", path, err)
	}
}

// regionName returns a region name unique to this test run.
func regionName(t *testing.T) string {
	return fmt.Sprintf("itest_%d_%d", os.Getpid(), time.Now().UnixNano())
}
