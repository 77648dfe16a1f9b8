package hooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rasterlab/filterkit/core"
)

func TestInMemoryMetrics_Accumulates(t *testing.T) {
	m := NewInMemoryMetrics()

	m.RecordProcessingTime("blur", 20*time.Millisecond)
	m.RecordProcessingTime("blur", 30*time.Millisecond)
	m.RecordProcessingTime("crop", 5*time.Millisecond)
	m.RecordError("crop", "transform")
	m.RecordThroughput(1024)
	m.RecordThroughput(512)
	m.RecordMemory(2048)

	snap := m.Snapshot()
	if snap.TransformCalls["blur"] != 2 {
		t.Errorf("blur calls = %d, want 2", snap.TransformCalls["blur"])
	}
	if snap.TransformDurationsMs["blur"] != 50 {
		t.Errorf("blur cumulative ms = %d, want 50", snap.TransformDurationsMs["blur"])
	}
	if snap.TransformErrors["crop"] != 1 {
		t.Errorf("crop errors = %d, want 1", snap.TransformErrors["crop"])
	}
	if snap.TotalThroughputB != 1536 {
		t.Errorf("throughput = %d, want 1536", snap.TotalThroughputB)
	}
	if snap.TotalMemoryB != 2048 {
		t.Errorf("memory = %d, want 2048", snap.TotalMemoryB)
	}
}

func TestInMemoryMetrics_SnapshotIsIndependent(t *testing.T) {
	m := NewInMemoryMetrics()
	m.RecordProcessingTime("blur", time.Millisecond)

	snap := m.Snapshot()
	snap.TransformCalls["blur"] = 99

	if m.Snapshot().TransformCalls["blur"] != 1 {
		t.Error("mutating a snapshot leaked into the collector")
	}
}

func TestInMemoryMetrics_ConcurrentUse(t *testing.T) {
	m := NewInMemoryMetrics()
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				m.RecordProcessingTime("blur", time.Millisecond)
				m.RecordThroughput(1)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	snap := m.Snapshot()
	if snap.TransformCalls["blur"] != 800 {
		t.Errorf("calls = %d, want 800", snap.TransformCalls["blur"])
	}
	if snap.TotalThroughputB != 800 {
		t.Errorf("throughput = %d, want 800", snap.TotalThroughputB)
	}
}

func TestMetricsHook_RecordsSuccessAndFailure(t *testing.T) {
	m := NewInMemoryMetrics()
	h := NewMetricsHook(m)
	buf := core.NewPixelBuffer(4, 4)
	ctx := context.Background()

	h.AfterTransform(ctx, "grayscale", buf, 10*time.Millisecond, nil)
	h.AfterTransform(ctx, "crop", nil, time.Millisecond, errors.New("bad region"))

	snap := m.Snapshot()
	if snap.TransformCalls["grayscale"] != 1 || snap.TransformErrors["grayscale"] != 0 {
		t.Errorf("grayscale = %d calls / %d errors",
			snap.TransformCalls["grayscale"], snap.TransformErrors["grayscale"])
	}
	if snap.TransformErrors["crop"] != 1 {
		t.Errorf("crop errors = %d, want 1", snap.TransformErrors["crop"])
	}
	if snap.TotalMemoryB != int64(len(buf.Pix)) {
		t.Errorf("memory = %d, want %d", snap.TotalMemoryB, len(buf.Pix))
	}
}
