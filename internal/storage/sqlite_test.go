package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/connect-plus/internal/connectplus"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestSlotLifecycle(t *testing.T) {
	store := openTestStore(t)

	// Empty slot
	if _, found, err := store.LoadSlot("current"); err != nil || found {
		t.Fatalf("LoadSlot(empty) = found %v, err %v", found, err)
	}
	if ok, err := store.HasSlot("current"); err != nil || ok {
		t.Fatalf("HasSlot(empty) = %v, %v", ok, err)
	}

	if err := store.SaveSlot("current", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("SaveSlot() failed: %v", err)
	}
	if err := store.SaveSlot("current", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("SaveSlot() overwrite failed: %v", err)
	}

	data, found, err := store.LoadSlot("current")
	if err != nil || !found {
		t.Fatalf("LoadSlot() = found %v, err %v", found, err)
	}
	if string(data) != `{"v":2}` {
		t.Errorf("LoadSlot() = %s, want the latest save", data)
	}

	if ok, _ := store.HasSlot("current"); !ok {
		t.Error("HasSlot() = false after save")
	}

	if err := store.DeleteSlot("current"); err != nil {
		t.Fatalf("DeleteSlot() failed: %v", err)
	}
	if ok, _ := store.HasSlot("current"); ok {
		t.Error("HasSlot() = true after delete")
	}
	if err := store.DeleteSlot("current"); err != nil {
		t.Errorf("DeleteSlot() on empty slot failed: %v", err)
	}
}

func TestListSlots(t *testing.T) {
	store := openTestStore(t)

	store.SaveSlot("a", []byte("12345"))
	store.SaveSlot("b", []byte("12"))

	slots, err := store.ListSlots()
	if err != nil {
		t.Fatalf("ListSlots() failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("Expected 2 slots, got %d", len(slots))
	}

	sizes := map[string]int{}
	for _, s := range slots {
		sizes[s.Slot] = s.Size
		if s.UpdatedAt.IsZero() {
			t.Errorf("slot %s has no update time", s.Slot)
		}
	}
	if sizes["a"] != 5 || sizes["b"] != 2 {
		t.Errorf("unexpected sizes %v", sizes)
	}
}

func TestSaveAndQueryResults(t *testing.T) {
	store := openTestStore(t)

	results := []MatchResult{
		{MatchID: "m1", Width: 7, Height: 6, WinningLength: 4, Players: []string{"local", "minimax"}, Winner: 0, Outcome: "won", Moves: 11},
		{MatchID: "m2", Width: 7, Height: 6, WinningLength: 4, Players: []string{"local", "minimax"}, Winner: 1, Outcome: "won", Moves: 14},
		{MatchID: "m3", Width: 7, Height: 6, WinningLength: 4, Players: []string{"local", "local"}, Winner: -1, Outcome: "draw", Moves: 42},
		{MatchID: "m4", Width: 5, Height: 5, WinningLength: 3, Players: []string{"random", "random"}, Winner: 1, Outcome: "won", Moves: 9},
		{Width: 7, Height: 6, WinningLength: 4, Players: []string{"local", "local"}, Winner: -1, Outcome: "cancelled", Moves: 3},
	}
	for _, r := range results {
		if _, err := store.SaveResult(r); err != nil {
			t.Fatalf("SaveResult() failed: %v", err)
		}
	}

	got, err := store.ResultByID("m2")
	if err != nil {
		t.Fatalf("ResultByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("ResultByID() returned nil for a saved match")
	}
	if got.Winner != 1 || got.Moves != 14 || len(got.Players) != 2 || got.Players[1] != "minimax" {
		t.Errorf("unexpected result %+v", got)
	}

	missing, err := store.ResultByID("nope")
	if err != nil || missing != nil {
		t.Errorf("ResultByID(unknown) = %v, %v; want nil, nil", missing, err)
	}

	recent, err := store.RecentResults(3)
	if err != nil {
		t.Fatalf("RecentResults() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 recent results, got %d", len(recent))
	}
	// Newest first
	if recent[0].Outcome != "cancelled" || recent[0].MatchID == "" {
		t.Errorf("Expected the generated-ID cancelled match first, got %+v", recent[0])
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Matches != 5 || stats.Draws != 1 || stats.Cancelled != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.WinsBySeat[0] != 1 || stats.WinsBySeat[1] != 2 {
		t.Errorf("unexpected wins %v", stats.WinsBySeat)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed not set")
	}
}

func TestSaveResultOverwrites(t *testing.T) {
	store := openTestStore(t)

	r := MatchResult{MatchID: "same", Width: 7, Height: 6, WinningLength: 4, Players: []string{"local", "local"}, Winner: -1, Outcome: "cancelled", Moves: 5}
	firstID, err := store.SaveResult(r)
	if err != nil {
		t.Fatalf("SaveResult() failed: %v", err)
	}

	other := r
	other.MatchID = "other"
	otherID, err := store.SaveResult(other)
	if err != nil {
		t.Fatalf("SaveResult() failed: %v", err)
	}

	r.Outcome = "won"
	r.Winner = 0
	r.Moves = 9
	id, err := store.SaveResult(r)
	if err != nil {
		t.Fatalf("SaveResult() overwrite failed: %v", err)
	}
	if id != firstID || id == otherID {
		t.Errorf("overwrite returned id %d, want the original row %d", id, firstID)
	}

	got, err := store.ResultByID("same")
	if err != nil || got == nil {
		t.Fatalf("ResultByID() = %v, %v", got, err)
	}
	if got.ID != firstID || got.Outcome != "won" || got.Moves != 9 {
		t.Errorf("result not updated in place: %+v", got)
	}

	recent, _ := store.RecentResults(10)
	if len(recent) != 2 {
		t.Fatalf("Expected 2 results after overwrite, got %d", len(recent))
	}
}

func TestEmptyStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Matches != 0 || len(stats.WinsBySeat) != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("unexpected stats for empty store %+v", stats)
	}
}

func TestStoreBacksSaver(t *testing.T) {
	store := openTestStore(t)
	saver := connectplus.NewSaver(store, "")

	if _, err := saver.Load(); !errors.Is(err, connectplus.ErrNoSave) {
		t.Fatalf("Load() on empty store = %v, want ErrNoSave", err)
	}

	cfg := connectplus.DefaultConfig()
	cfg.HighlightDuration = 0
	quiet := connectplus.WithLogger(log.New(io.Discard))
	g, err := connectplus.NewGame(cfg, []connectplus.Strategy{
		connectplus.NewLocal(),
		connectplus.NewMinimaxBot(2),
	}, connectplus.WithPersister(saver), quiet)
	if err != nil {
		t.Fatalf("NewGame() failed: %v", err)
	}

	if _, err := g.Apply(context.Background(), connectplus.Placement(3)); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	if !saver.Exists() {
		t.Fatal("match was not saved after a move")
	}

	resumed, err := saver.Load(quiet)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if resumed.ID() != g.ID() || resumed.Board().String() != g.Board().String() {
		t.Error("resumed match differs from the saved one")
	}
	if resumed.Active() != 1 {
		t.Errorf("resumed active player = %d, want 1", resumed.Active())
	}

	record := ResultOf(resumed, 90*time.Second)
	if record.MatchID != g.ID() || record.Outcome != "in_progress" || record.Duration != 90 {
		t.Errorf("unexpected record %+v", record)
	}
	if len(record.Players) != 2 || record.Players[1] != "minimax" {
		t.Errorf("unexpected players %v", record.Players)
	}
}
