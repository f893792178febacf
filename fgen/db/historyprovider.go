package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/foldergen/foldergen/fgen/generator/types"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"
)

// HistoryProvider persists one row per generation run. Best-effort storage:
// the hosting layer logs write failures and never fails a run over them.
type HistoryProvider struct {
	db *sql.DB
}

// Run is one persisted generation run.
type Run struct {
	ID           uuid.UUID `json:"id"`
	DataSource   string    `json:"data_source"`
	OutputRoot   string    `json:"output_root"`
	SuccessCount int       `json:"success_count"`
	FailCount    int       `json:"fail_count"`
	FolderCount  int       `json:"folder_count"`
	FailDetails  []string  `json:"fail_details"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewHistoryProvider opens or initializes the run history database at path.
func NewHistoryProvider(path string) (*HistoryProvider, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create history directory: %w", err)
	}

	slog.Info("Run history database path:", "path", path)

	db, err := connectToDB(path)
	if err != nil {
		return nil, err
	}

	provider := &HistoryProvider{db: db}
	if err := provider.init(); err != nil {
		db.Close()
		return nil, err
	}
	return provider, nil
}

func connectToDB(path string) (*sql.DB, error) {
	db, err := sql.Open("libsql", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}
	return db, nil
}

// init sets up the history tables.
func (h *HistoryProvider) init() error {
	_, err := h.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY UNIQUE,
		data_source TEXT,
		output_root TEXT,
		success_count INTEGER,
		fail_count INTEGER,
		folder_count INTEGER,
		fail_details TEXT,
		time_stamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	return nil
}

// AddRun records the outcome of one generation run and returns its ID.
func (h *HistoryProvider) AddRun(source types.DataSource, outputRoot string, result *types.GenerationResult) (uuid.UUID, error) {
	details, err := json.Marshal(result.FailDetails)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode fail details: %w", err)
	}

	id := uuid.New()
	_, err = h.db.Exec(
		"INSERT INTO runs (id, data_source, output_root, success_count, fail_count, folder_count, fail_details) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, string(source), outputRoot, result.SuccessCount, result.FailCount, result.FolderCount, string(details),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}

	slog.Debug("Recorded generation run", "id", id, "output_root", outputRoot)

	return id, nil
}

// ListRuns returns up to limit runs, newest first.
func (h *HistoryProvider) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := h.db.Query(
		"SELECT id, data_source, output_root, success_count, fail_count, folder_count, fail_details, time_stamp FROM runs ORDER BY time_stamp DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			idStr   string
			details string
		)
		if err := rows.Scan(&idStr, &run.DataSource, &run.OutputRoot, &run.SuccessCount, &run.FailCount, &run.FolderCount, &details, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		parsed, pErr := uuid.Parse(idStr)
		if pErr != nil {
			return nil, fmt.Errorf("failed to parse run id: %w", pErr)
		}
		run.ID = parsed

		if details != "" {
			if err := json.Unmarshal([]byte(details), &run.FailDetails); err != nil {
				return nil, fmt.Errorf("failed to decode fail details: %w", err)
			}
		}

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// Close closes the history database connection.
func (h *HistoryProvider) Close() error {
	return h.db.Close()
}
