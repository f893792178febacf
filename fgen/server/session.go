package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/foldergen/foldergen/fgen/generator/types"

	"github.com/google/uuid"
)

// Session accumulates the inputs of one generation run between requests.
// It replaces the process-wide globals of the reference deployment: all
// request-scoped state lives here, and Snapshot hands the engine one
// immutable RunRequest.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu           sync.Mutex
	dataSource   types.DataSource
	levelPolicy  types.LevelPolicy
	names        []string
	table        [][]string
	levels       []string
	sourceFolder string
	sourceFiles  []types.SourceFileRef
	outputRoot   string
}

// SetSourceFolder records the scanned folder and clears any prior selection.
func (s *Session) SetSourceFolder(folder string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourceFolder = folder
	s.sourceFiles = nil
}

// SetSourceFiles records the selected source files.
func (s *Session) SetSourceFiles(files []types.SourceFileRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourceFiles = files
}

// SetNames records the name list records.
func (s *Session) SetNames(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = names
}

// SetTable records the tabular records.
func (s *Session) SetTable(table [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
}

// SetLevels records the hierarchy levels and the data source they target.
func (s *Session) SetLevels(levels []string, source types.DataSource, policy types.LevelPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = levels
	s.dataSource = source
	s.levelPolicy = policy
}

// SetOutputRoot records the destination root for generated directories.
func (s *Session) SetOutputRoot(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputRoot = root
}

// OutputRoot returns the configured destination root.
func (s *Session) OutputRoot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputRoot
}

// Snapshot copies the accumulated state into one RunRequest. The engine
// never sees the live session.
func (s *Session) Snapshot() *types.RunRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := &types.RunRequest{
		DataSource:  s.dataSource,
		Levels:      append([]string(nil), s.levels...),
		SourceFiles: append([]types.SourceFileRef(nil), s.sourceFiles...),
		OutputRoot:  s.outputRoot,
		LevelPolicy: s.levelPolicy,
	}
	if req.DataSource == "" {
		req.DataSource = types.SourceNameList
	}

	req.Names = append([]string(nil), s.names...)
	req.Table = make([][]string, 0, len(s.table))
	for _, row := range s.table {
		req.Table = append(req.Table, append([]string(nil), row...))
	}

	return req
}

// SessionStore is an in-memory session registry keyed by uuid.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create registers a new session.
func (st *SessionStore) Create() *Session {
	session := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
	}

	st.mu.Lock()
	st.sessions[session.ID] = session
	st.mu.Unlock()

	return session
}

// Get looks a session up by its string ID.
func (st *SessionStore) Get(id string) (*Session, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", id, err)
	}

	st.mu.RLock()
	session, ok := st.sessions[parsed]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown session %s", parsed)
	}

	return session, nil
}
