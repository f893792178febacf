package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/foldergen/foldergen/fgen/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Addr:      "127.0.0.1:0",
			UploadDir: t.TempDir(),
		},
		Generator: config.GeneratorConfig{
			OutputRoot:          t.TempDir(),
			MainFolderName:      "batch_output",
			MaxSourceFileBytes:  10 * 1024 * 1024,
			LevelPolicy:         "legacy",
			SupportedExtensions: config.DefaultSupportedExtensions,
			ScanWorkers:         2,
		},
	}
	return New(slog.Default(), cfg, nil), cfg
}

func doJSON(t *testing.T, s *Server, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	return payload
}

func createSession(t *testing.T, s *Server) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/session", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody(t, rec)["session_id"].(string)
}

func TestMissingSessionHeaderRejected(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/name-list", "", map[string]any{"names": []string{"A"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownSessionRejected(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/name-list", "c1f0d8a2-0000-0000-0000-000000000000", map[string]any{"names": []string{"A"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessNameListFlow(t *testing.T) {
	s, cfg := newTestServer(t)
	sessionID := createSession(t, s)

	srcDir := t.TempDir()
	src1 := filepath.Join(srcDir, "a.txt")
	src2 := filepath.Join(srcDir, "b.txt")
	require.NoError(t, os.WriteFile(src1, []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(src2, []byte("beta"), 0o644))

	rec := doJSON(t, s, http.MethodPost, "/api/name-list", sessionID, map[string]any{
		"names": []string{"Alice", "Bob"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/levels", sessionID, map[string]any{
		"levels":      []string{"name", "Dept"},
		"data_source": "name",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/files", sessionID, map[string]any{
		"paths": []string{src1, src2},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/output-folder", sessionID, map[string]any{
		"use_default": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/process", sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "completed", payload["status"])

	result := payload["result"].(map[string]any)
	assert.Equal(t, float64(2), result["folder_count"])
	assert.Equal(t, float64(4), result["success_count"])
	assert.Equal(t, float64(0), result["fail_count"])

	outputRoot := filepath.Join(cfg.Generator.OutputRoot, "batch_output")
	assert.FileExists(t, filepath.Join(outputRoot, "Alice", "Alice", "a.txt"))
	assert.FileExists(t, filepath.Join(outputRoot, "Bob", "Bob", "b.txt"))
}

func TestProcessWithoutRecordsReturnsError(t *testing.T) {
	s, _ := newTestServer(t)
	sessionID := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/levels", sessionID, map[string]any{
		"levels":      []string{"name"},
		"data_source": "name",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/process", sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "error", payload["status"])
	assert.NotEmpty(t, payload["message"])
}

func TestLevelsRejectsUnknownDataSource(t *testing.T) {
	s, _ := newTestServer(t)
	sessionID := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/levels", sessionID, map[string]any{
		"levels":      []string{"name"},
		"data_source": "excel",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSourceFolderScan(t *testing.T) {
	s, _ := newTestServer(t)
	sessionID := createSession(t, s)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool.bin"), []byte("x"), 0o644))

	rec := doJSON(t, s, http.MethodPost, "/api/source-folder", sessionID, map[string]any{"path": dir})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	files := payload["files"].([]any)
	require.Len(t, files, 1)
	assert.Equal(t, "doc.txt", files[0].(map[string]any)["name"])
}

func TestSpreadsheetEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	sessionID := createSession(t, s)

	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name,Dept\nAlice,Sales\n"), 0o644))

	rec := doJSON(t, s, http.MethodPost, "/api/spreadsheet", sessionID, map[string]any{"path": path})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, float64(1), payload["row_count"])
	assert.Equal(t, []any{"A", "B"}, payload["columns"].([]any))
}

func TestHistoryDisabled(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
