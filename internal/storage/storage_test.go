package storage

import (
	"os"
	"testing"
	"time"

	"github.com/hailam/shogiplay/internal/config"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences(t *testing.T) {
	s := openTestStorage(t)

	t.Run("DefaultsWhenMissing", func(t *testing.T) {
		prefs, err := s.LoadPreferences()
		if err != nil {
			t.Fatalf("LoadPreferences: %v", err)
		}
		if prefs.Setup != "shogi" {
			t.Errorf("Expected setup 'shogi', got '%s'", prefs.Setup)
		}
		if prefs.Strength != config.Medium {
			t.Errorf("Expected medium strength, got %s", prefs.Strength)
		}
		if prefs.EvaluatorType != config.Handcrafted {
			t.Errorf("Expected handcrafted evaluator, got %s", prefs.EvaluatorType)
		}
	})

	t.Run("SaveLoad", func(t *testing.T) {
		prefs := DefaultPreferences()
		prefs.Setup = "mixed"
		prefs.Strength = config.Strong
		if err := s.SavePreferences(prefs); err != nil {
			t.Fatalf("SavePreferences: %v", err)
		}
		if prefs.LastUsed.IsZero() {
			t.Error("Expected LastUsed to be set")
		}

		loaded, err := s.LoadPreferences()
		if err != nil {
			t.Fatalf("LoadPreferences: %v", err)
		}
		if loaded.Setup != "mixed" || loaded.Strength != config.Strong {
			t.Errorf("Unexpected preferences %+v", loaded)
		}
	})
}

func TestRecordSearch(t *testing.T) {
	s := openTestStorage(t)

	hash, err := Fingerprint(config.DefaultSearch())
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	rec := SearchRecord{
		Fixture:    "shogi",
		ConfigHash: hash,
		Position:   0xABC,
		BestMove:   "7g7f",
		Score:      35,
		Depth:      4,
		Nodes:      12000,
		ElapsedMs:  250,
	}

	prev, err := s.RecordSearch(rec, false)
	if err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}
	if prev != nil {
		t.Errorf("Expected no previous record, got %+v", prev)
	}

	again := rec
	again.ElapsedMs = 300
	prev, err = s.RecordSearch(again, true)
	if err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}
	if prev == nil || !prev.SameResult(again) {
		t.Errorf("Expected the earlier identical result back, got %+v", prev)
	}

	loaded, found, err := s.LoadRecord("shogi", hash)
	if err != nil || !found {
		t.Fatalf("LoadRecord: found %v, err %v", found, err)
	}
	if loaded.ElapsedMs != 300 || loaded.RecordedAt.IsZero() {
		t.Errorf("Unexpected stored record %+v", loaded)
	}

	if _, found, err := s.LoadRecord("shogi", hash+1); err != nil || found {
		t.Errorf("Expected no record for another config, found %v, err %v", found, err)
	}

	totals, err := s.LoadTotals()
	if err != nil {
		t.Fatalf("LoadTotals: %v", err)
	}
	if totals.Searches != 2 || totals.Nodes != 24000 || totals.Mates != 1 || totals.MaxDepth != 4 {
		t.Errorf("Unexpected totals %+v", totals)
	}
	if totals.TotalTime != 550*time.Millisecond {
		t.Errorf("Expected 550ms total, got %s", totals.TotalTime)
	}
	if nps := totals.NodesPerSecond(); nps <= 0 {
		t.Errorf("Expected a positive speed, got %f", nps)
	}
}

func TestListRecords(t *testing.T) {
	s := openTestStorage(t)
	for _, fixture := range []string{"mixed", "chess", "shogi"} {
		if _, err := s.RecordSearch(SearchRecord{Fixture: fixture, Depth: 1}, false); err != nil {
			t.Fatalf("RecordSearch: %v", err)
		}
	}
	if err := s.SavePreferences(DefaultPreferences()); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	records, err := s.ListRecords()
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	want := []string{"chess", "mixed", "shogi"}
	if len(records) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(records))
	}
	for i, rec := range records {
		if rec.Fixture != want[i] {
			t.Errorf("record %d: expected %s, got %s", i, want[i], rec.Fixture)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(config.DefaultSearch())
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	b, _ := Fingerprint(config.DefaultSearch())
	if a != b {
		t.Error("Expected equal fingerprints for equal configs")
	}
	changed := config.DefaultSearch()
	changed.EnableLMR = false
	c, _ := Fingerprint(changed)
	if a == c {
		t.Error("Expected different fingerprints for different configs")
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	modelDir, err := GetModelDir()
	if err != nil {
		t.Fatalf("GetModelDir failed: %v", err)
	}
	if _, err := os.Stat(modelDir); err != nil {
		t.Errorf("Model directory was not created: %v", err)
	}
	t.Logf("Data directory: %s", dataDir)
}
