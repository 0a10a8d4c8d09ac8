package history

import (
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndRecent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.Record(Run{
			InstanceFile: "data/inst.csv",
			StartedAt:    base.Add(time.Duration(i) * time.Minute),
			StockWidth:   20,
			StockLength:  20,
			ItemTypes:    2,
			Plates:       2,
			Objective:    2,
			RootLB:       1.5,
			Gap:          0,
			Nodes:        3 + i,
			TimedOut:     i == 2,
			Elapsed:      1500 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Most recent first.
	if runs[0].Nodes != 5 || runs[1].Nodes != 4 {
		t.Errorf("order wrong: nodes = %d, %d", runs[0].Nodes, runs[1].Nodes)
	}
	if !runs[0].TimedOut || runs[1].TimedOut {
		t.Error("timed_out flag did not round-trip")
	}
	if runs[0].Elapsed != 1500*time.Millisecond {
		t.Errorf("elapsed = %v", runs[0].Elapsed)
	}
	if !runs[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("started_at = %v", runs[0].StartedAt)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		if err := store.Record(Run{InstanceFile: "x.csv", StartedAt: time.Now()}); err != nil {
			t.Fatalf("Record #%d: %v", i+1, err)
		}
		store.Close()
	}

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	runs, err := store.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs after two sessions, want 2", len(runs))
	}
}
