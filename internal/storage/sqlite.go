// Package storage provides SQLite-based persistence for saved matches and
// match results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/connect-plus/internal/connectplus"
)

// sqliteTime is the layout SQLite uses for CURRENT_TIMESTAMP.
const sqliteTime = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for match persistence.
type Store struct {
	db *sql.DB
}

// SlotInfo describes a saved match slot.
type SlotInfo struct {
	Slot      string
	Size      int
	UpdatedAt time.Time
}

// MatchResult represents the outcome of a finished or abandoned match.
type MatchResult struct {
	ID            int64
	MatchID       string
	Width         int
	Height        int
	WinningLength int
	Players       []string // strategy kind per seat
	Winner        int      // seat index, -1 if nobody won
	Outcome       string   // "won", "draw" or "cancelled"
	Moves         int
	Duration      int // Duration in seconds
	CreatedAt     time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS saved_matches (
			slot TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS match_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			winning_length INTEGER NOT NULL,
			players TEXT NOT NULL,
			winner INTEGER NOT NULL DEFAULT -1,
			outcome TEXT NOT NULL,
			moves INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_match_results_created ON match_results(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_match_results_outcome ON match_results(outcome, winner);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSlot stores serialized match data, replacing what the slot held.
func (s *Store) SaveSlot(slot string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO saved_matches (slot, data) VALUES (?, ?)
		 ON CONFLICT(slot) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		slot, string(data),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save slot %s: %w", slot, err)
	}
	return nil
}

// LoadSlot returns the data stored in a slot and whether the slot exists.
func (s *Store) LoadSlot(slot string) ([]byte, bool, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM saved_matches WHERE slot = ?", slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: cannot load slot %s: %w", slot, err)
	}
	return []byte(data), true, nil
}

// DeleteSlot clears a slot. Deleting an empty slot is not an error.
func (s *Store) DeleteSlot(slot string) error {
	_, err := s.db.Exec("DELETE FROM saved_matches WHERE slot = ?", slot)
	if err != nil {
		return fmt.Errorf("storage: cannot delete slot %s: %w", slot, err)
	}
	return nil
}

// HasSlot returns true if a slot holds data.
func (s *Store) HasSlot(slot string) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM saved_matches WHERE slot = ?", slot).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage: cannot query slot %s: %w", slot, err)
	}
	return n > 0, nil
}

// ListSlots returns every saved match slot, most recently updated first.
func (s *Store) ListSlots() ([]SlotInfo, error) {
	rows, err := s.db.Query(
		`SELECT slot, LENGTH(data), updated_at
		 FROM saved_matches
		 ORDER BY updated_at DESC, slot`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query slots: %w", err)
	}
	defer rows.Close()

	var slots []SlotInfo
	for rows.Next() {
		var info SlotInfo
		var updatedAt any
		if err := rows.Scan(&info.Slot, &info.Size, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		info.UpdatedAt = parseTime(updatedAt)
		slots = append(slots, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return slots, nil
}

// Ensure Store can back a connectplus.Saver
var _ connectplus.SlotStore = (*Store)(nil)

// ResultOf builds the result record of a match that has stopped.
func ResultOf(g *connectplus.Game, elapsed time.Duration) MatchResult {
	cfg := g.Config()
	result := g.Result()

	players := g.Players()
	kinds := make([]string, len(players))
	for i, p := range players {
		kinds[i] = string(p.Kind())
	}

	return MatchResult{
		MatchID:       g.ID(),
		Width:         cfg.Width,
		Height:        cfg.Height,
		WinningLength: cfg.WinningLength,
		Players:       kinds,
		Winner:        result.Winner,
		Outcome:       result.State.String(),
		Moves:         result.Moves,
		Duration:      int(elapsed.Seconds()),
	}
}

// SaveResult records the outcome of a match. A missing MatchID is
// generated. Saving the same match twice overwrites the earlier record.
// Returns the ID of the inserted record.
func (s *Store) SaveResult(r MatchResult) (int64, error) {
	if r.MatchID == "" {
		r.MatchID = uuid.NewString()
	}

	var id int64
	err := s.db.QueryRow(
		`INSERT INTO match_results
		 (match_id, width, height, winning_length, players, winner, outcome, moves, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(match_id) DO UPDATE SET
		   winner = excluded.winner,
		   outcome = excluded.outcome,
		   moves = excluded.moves,
		   duration_secs = excluded.duration_secs
		 RETURNING id`,
		r.MatchID,
		r.Width,
		r.Height,
		r.WinningLength,
		strings.Join(r.Players, ","),
		r.Winner,
		r.Outcome,
		r.Moves,
		r.Duration,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match result: %w", err)
	}

	return id, nil
}

const resultColumns = `id, match_id, width, height, winning_length, players,
		        winner, outcome, moves, duration_secs, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (MatchResult, error) {
	var r MatchResult
	var players string
	var createdAt any

	err := row.Scan(
		&r.ID,
		&r.MatchID,
		&r.Width,
		&r.Height,
		&r.WinningLength,
		&players,
		&r.Winner,
		&r.Outcome,
		&r.Moves,
		&r.Duration,
		&createdAt,
	)
	if err != nil {
		return r, err
	}

	if players != "" {
		r.Players = strings.Split(players, ",")
	}
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// ResultByID retrieves a match result by its match ID.
// Returns nil if the match is unknown.
func (s *Store) ResultByID(matchID string) (*MatchResult, error) {
	row := s.db.QueryRow(
		`SELECT `+resultColumns+`
		 FROM match_results
		 WHERE match_id = ?`,
		matchID,
	)

	result, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match result: %w", err)
	}
	return &result, nil
}

// RecentResults retrieves the most recent match results.
func (s *Store) RecentResults(limit int) ([]MatchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+resultColumns+`
		 FROM match_results
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match results: %w", err)
	}
	defer rows.Close()

	var results []MatchResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// MatchStats contains aggregated statistics over all recorded matches.
type MatchStats struct {
	Matches    int
	Draws      int
	Cancelled  int
	WinsBySeat map[int]int
	AvgMoves   float64
	LastPlayed time.Time
}

// Stats retrieves aggregated statistics for all recorded matches.
func (s *Store) Stats() (*MatchStats, error) {
	stats := &MatchStats{WinsBySeat: make(map[int]int)}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = 'draw' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN outcome = 'cancelled' THEN 1 ELSE 0 END), 0),
		        COALESCE(AVG(moves), 0),
		        MAX(created_at)
		 FROM match_results`,
	).Scan(&stats.Matches, &stats.Draws, &stats.Cancelled, &stats.AvgMoves, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get match stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	rows, err := s.db.Query(
		`SELECT winner, COUNT(*)
		 FROM match_results
		 WHERE outcome = 'won'
		 GROUP BY winner`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get wins: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seat, wins int
		if err := rows.Scan(&seat, &wins); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		stats.WinsBySeat[seat] = wins
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// parseTime handles datetimes returned both as time.Time and as strings.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(sqliteTime, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
