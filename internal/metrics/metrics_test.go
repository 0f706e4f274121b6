package metrics

import (
	"testing"
	"time"
)

func TestGetStatsHealthyWhenNoErrors(t *testing.T) {
	m := &Metrics{}
	if m.GetStats()["is_healthy"] != true {
		t.Fatalf("fresh metrics must be healthy")
	}
}

func TestGetStatsUnhealthyAfterError(t *testing.T) {
	run := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	m := &Metrics{
		LastIngestRun: run,
		LastError:     "source down",
		LastErrorTime: run.Add(time.Minute),
	}

	if m.GetStats()["is_healthy"] != false {
		t.Fatalf("an error after the last run must flip health")
	}
}

func TestGetStatsRecoversAfterIngestRun(t *testing.T) {
	errTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	m := &Metrics{
		LastError:     "source down",
		LastErrorTime: errTime,
		LastIngestRun: errTime.Add(time.Minute),
	}

	if m.GetStats()["is_healthy"] != true {
		t.Fatalf("a clean ingest run after the error must restore health")
	}
}

func TestGetStatsRecoversAfterPublishRun(t *testing.T) {
	errTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	m := &Metrics{
		LastError:      "telegram down",
		LastErrorTime:  errTime,
		LastPublishRun: errTime.Add(time.Minute),
	}

	if m.GetStats()["is_healthy"] != true {
		t.Fatalf("a clean publish run after the error must restore health")
	}
}
