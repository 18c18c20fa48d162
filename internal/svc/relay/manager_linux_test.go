// If you are AI: This file tests the host and client roles over a real shared region.

package relay

import (
	"errors"
	"testing"
	"time"

	"framerelay/internal/core/session"
	"framerelay/internal/shm"
)

func TestManagerHostClientRegion(t *testing.T) {
	cfg := testConfig(t)
	registry := session.NewRegistry()

	host := NewManager(registry, nil)
	if err := host.StartRole(cfg, RoleHost); err != nil {
		t.Fatalf("Failed to start host: %v", err)
	}

	client := NewManager(registry, nil)
	if err := client.StartRole(cfg, RoleClient); err != nil {
		host.Stop()
		t.Fatalf("Failed to start client: %v", err)
	}

	waitFor(t, "client frames", func() bool { return clientFrames(client) >= 10 })

	ep := registry.Get(cfg.Region.Name, session.RoleClient)
	hp := registry.Get(cfg.Region.Name, session.RoleHost)
	if ep == nil || hp == nil {
		t.Fatal("Both endpoints should be registered")
	}
	if ep.Session != hp.Session {
		t.Error("Client and host should report the same region session")
	}

	if err := client.Stop(); err != nil {
		t.Errorf("Client stop failed: %v", err)
	}
	if err := host.Stop(); err != nil {
		t.Errorf("Host stop failed: %v", err)
	}

	for _, info := range client.GetTasks() {
		if info.Stats.Mismatches != 0 {
			t.Errorf("Client saw %d mismatched frames", info.Stats.Mismatches)
		}
	}
}

func TestOpenClientSessionWaitsForHost(t *testing.T) {
	cfg := testConfig(t)
	opts, err := sessionOptions(cfg)
	if err != nil {
		t.Fatalf("sessionOptions: %v", err)
	}
	layout := cfg.Layout()
	region, err := shm.Create(cfg.Region.Name, layout.Geometry())
	if err != nil {
		t.Fatalf("Create region: %v", err)
	}
	defer region.Close()

	// The host formats the session only after the client starts waiting
	formatted := make(chan error, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		_, err := session.Format(region.Data(), layout, opts...)
		if err == nil {
			region.MarkReady()
		}
		formatted <- err
	}()

	s, client, err := openClientSession(cfg, opts)
	if err != nil {
		t.Fatalf("Client should wait for the host, got %v", err)
	}
	defer client.Close()
	if err := <-formatted; err != nil {
		t.Fatalf("Format: %v", err)
	}
	if client.Session() != region.Session() {
		t.Error("Client attached to a different session")
	}
	if s.Layout() != layout {
		t.Errorf("Client layout %+v, want %+v", s.Layout(), layout)
	}
}

func TestWaitForRegionNeverReady(t *testing.T) {
	cfg := testConfig(t)
	region, err := shm.Create(cfg.Region.Name, cfg.Layout().Geometry())
	if err != nil {
		t.Fatalf("Create region: %v", err)
	}
	defer region.Close()

	if _, err := waitForRegion(cfg.Region.Name, 50*time.Millisecond); !errors.Is(err, shm.ErrNotReady) {
		t.Errorf("Expected ErrNotReady after timeout, got %v", err)
	}
}
