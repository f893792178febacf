package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/foldergen/foldergen/fgen/generator/types"
	"github.com/foldergen/foldergen/fgen/ingest"

	"github.com/google/uuid"
)

// sessionHeader carries the session ID on every stateful request.
const sessionHeader = "X-Session-ID"

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.Create()

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"status":     "success",
		"session_id": session.ID.String(),
	})
}

func (s *Server) handleSourceFolder(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	files, err := ingest.ScanFolder(r.Context(), req.Path, ingest.ScanOptions{
		Extensions:   s.cfg.Generator.SupportedExtensions,
		MaxFileBytes: s.cfg.Generator.MaxSourceFileBytes,
		Workers:      s.cfg.Generator.ScanWorkers,
	})
	if err != nil {
		s.logger.Error("Source folder scan failed", "path", req.Path, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session.SetSourceFolder(req.Path)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"folder": req.Path,
		"files":  files,
	})
}

func (s *Server) handleSelectFiles(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Paths []string `json:"paths"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Missing files are kept in the selection: the engine charges them as
	// per-file failures during materialization instead of silently dropping
	// them here.
	files := make([]types.SourceFileRef, 0, len(req.Paths))
	for _, path := range req.Paths {
		ref := types.SourceFileRef{
			DisplayName: filepath.Base(path),
			Path:        path,
		}
		if info, err := os.Stat(path); err == nil {
			ref.Size = info.Size()
		}
		files = append(files, ref)
	}
	session.SetSourceFiles(files)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"count":  len(files),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessionFromRequest(w, r); !ok {
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	uploadDir := s.cfg.Server.UploadDir
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		s.logger.Error("Failed to create upload directory", "dir", uploadDir, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Prefix with a uuid so concurrent uploads of the same filename never
	// clobber each other.
	dstPath := filepath.Join(uploadDir, fmt.Sprintf("%s_%s", uuid.New(), filepath.Base(header.Filename)))
	dst, err := os.Create(dstPath)
	if err != nil {
		s.logger.Error("Failed to create upload file", "path", dstPath, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		s.logger.Error("Failed to store upload", "path", dstPath, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"name":   header.Filename,
		"path":   dstPath,
		"size":   size,
	})
}

func (s *Server) handleNameFile(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	names, err := ingest.ReadNameList(req.Path)
	if err != nil {
		s.logger.Error("Failed to read name file", "path", req.Path, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	session.SetNames(names)

	preview := names
	if len(preview) > 10 {
		preview = preview[:10]
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"file":   req.Path,
		"count":  len(names),
		"names":  preview,
	})
}

func (s *Server) handleNameList(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Names []string `json:"names"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	session.SetNames(req.Names)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"count":  len(req.Names),
	})
}

func (s *Server) handleSpreadsheet(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	table, err := ingest.ReadSpreadsheet(req.Path)
	if err != nil {
		s.logger.Error("Failed to read spreadsheet", "path", req.Path, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	session.SetTable(table.Rows)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"file":      req.Path,
		"row_count": table.RowCount(),
		"columns":   table.Columns,
		"rows":      table.Rows,
	})
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Levels      []string `json:"levels"`
		DataSource  string   `json:"data_source"`
		LevelPolicy string   `json:"level_policy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	source := types.DataSource(req.DataSource)
	switch source {
	case types.SourceNameList, types.SourceTabular:
	case "":
		source = types.SourceNameList
	default:
		http.Error(w, fmt.Sprintf("unknown data source %q", req.DataSource), http.StatusBadRequest)
		return
	}

	policy := types.LevelPolicy(req.LevelPolicy)
	switch policy {
	case types.PolicyLegacy, types.PolicyStrict:
	case "":
		policy = types.LevelPolicy(s.cfg.Generator.LevelPolicy)
	default:
		http.Error(w, fmt.Sprintf("unknown level policy %q", req.LevelPolicy), http.StatusBadRequest)
		return
	}

	session.SetLevels(req.Levels, source, policy)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"levels":      req.Levels,
		"data_source": string(source),
	})
}

func (s *Server) handleOutputFolder(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		UseDefault bool   `json:"use_default"`
		MainFolder string `json:"main_folder"`
		Path       string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	mainFolder := req.MainFolder
	if mainFolder == "" {
		mainFolder = s.cfg.Generator.MainFolderName
	}

	base := req.Path
	if req.UseDefault || base == "" {
		base = s.cfg.Generator.OutputRoot
	}

	outputRoot := filepath.Join(base, mainFolder)
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		s.logger.Error("Failed to create output folder", "path", outputRoot, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	session.SetOutputRoot(outputRoot)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"folder": outputRoot,
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	// Fall back to the configured default root, as the reference deployment
	// does when no output folder was picked.
	if session.OutputRoot() == "" {
		root := filepath.Join(s.cfg.Generator.OutputRoot, s.cfg.Generator.MainFolderName)
		if err := os.MkdirAll(root, 0o755); err != nil {
			s.logger.Error("Failed to create default output folder", "path", root, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		session.SetOutputRoot(root)
	}

	req := session.Snapshot()
	result, err := s.engine.Process(r.Context(), req)
	if err != nil {
		// Configuration failure: zero side effects, structured result with
		// the diagnostic already recorded.
		s.writeJSON(w, http.StatusOK, map[string]any{
			"status":  "error",
			"message": err.Error(),
			"result":  result,
		})
		return
	}

	if s.history != nil {
		if _, herr := s.history.AddRun(req.DataSource, req.OutputRoot, result); herr != nil {
			s.logger.Error("Failed to record run history", "error", herr)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "completed",
		"result":        result,
		"output_folder": req.OutputRoot,
		"file_count":    len(req.SourceFiles),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "Run history is disabled", http.StatusNotFound)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := s.history.ListRuns(limit)
	if err != nil {
		s.logger.Error("Failed to list run history", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"runs":   runs,
	})
}

func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		http.Error(w, fmt.Sprintf("missing %s header", sessionHeader), http.StatusBadRequest)
		return nil, false
	}

	session, err := s.sessions.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	return session, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}
