package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveGenerateDuration(150 * time.Millisecond)
	pr.IncGenerateOutcome(OutcomeSuccess)
	pr.IncDownload(DownloadOK)
	pr.IncSweepEvicted(2)
	pr.IncSweepDeleteFailure()
	pr.SetActiveFiles(5)
	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}
