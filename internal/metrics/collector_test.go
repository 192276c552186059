package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockStatsProvider struct {
	mu    sync.Mutex
	stats Stats
	calls int
}

func (m *mockStatsProvider) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.stats
}

func (m *mockStatsProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestNewCollector(t *testing.T) {
	provider := &mockStatsProvider{}

	collector := NewCollector(provider, 5*time.Second)

	if collector == nil {
		t.Fatal("NewCollector returned nil")
	}
	if collector.statsProvider != provider {
		t.Error("statsProvider not set correctly")
	}
	if collector.interval != 5*time.Second {
		t.Errorf("interval = %v, want %v", collector.interval, 5*time.Second)
	}
	if collector.stopChan == nil {
		t.Error("stopChan not initialized")
	}
}

func TestCollectorWithNilProvider(_ *testing.T) {
	collector := NewCollector(nil, 10*time.Millisecond)
	collector.Start()
	time.Sleep(30 * time.Millisecond)
	collector.Stop()
}

func TestCollectorUpdatesGauges(t *testing.T) {
	provider := &mockStatsProvider{
		stats: Stats{ActiveWorkspaces: 3, WorkDirBytes: 4096},
	}

	collector := NewCollector(provider, time.Hour)
	collector.Start()

	deadline := time.Now().Add(2 * time.Second)
	for provider.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	collector.Stop()

	if got := testutil.ToFloat64(WorkspacesActive); got != 3 {
		t.Errorf("Expected WorkspacesActive=3, got %v", got)
	}
	if got := testutil.ToFloat64(WorkDirBytes); got != 4096 {
		t.Errorf("Expected WorkDirBytes=4096, got %v", got)
	}
}

func TestCollectorMultipleCycles(t *testing.T) {
	provider := &mockStatsProvider{}

	collector := NewCollector(provider, 10*time.Millisecond)
	collector.Start()
	time.Sleep(80 * time.Millisecond)
	collector.Stop()

	if provider.callCount() < 2 {
		t.Errorf("Expected several collection cycles, got %d", provider.callCount())
	}

	// No further collection after Stop returns.
	calls := provider.callCount()
	time.Sleep(30 * time.Millisecond)
	if provider.callCount() != calls {
		t.Error("Collector kept running after Stop")
	}
}
