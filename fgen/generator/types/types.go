package types

// DataSource selects where the records of a run come from.
type DataSource string

const (
	// SourceNameList treats every input line as one record.
	SourceNameList DataSource = "name"
	// SourceTabular treats every spreadsheet row as one record.
	SourceTabular DataSource = "tabular"
)

// LevelPolicy controls how non-first levels resolve in name mode.
type LevelPolicy string

const (
	// PolicyLegacy reproduces the historical rule: a purely alphabetic level
	// string substitutes the record name, anything else is a literal segment.
	PolicyLegacy LevelPolicy = "legacy"
	// PolicyStrict only substitutes the record name for the literal token
	// "name"; every other level string is used verbatim.
	PolicyStrict LevelPolicy = "strict"
)

// SourceFileRef identifies one file to copy into every generated directory.
// Size is captured when the file is selected, before materialization begins.
type SourceFileRef struct {
	DisplayName string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
}

// FolderPartSequence holds the sanitized path segments for one record,
// relative to the output root. Length equals the number of valid levels.
type FolderPartSequence []string

// RunRequest carries every input of one generation run. It replaces the
// process-wide request state of the reference deployment: the engine reads
// it, never mutates it, and holds nothing between calls.
type RunRequest struct {
	DataSource  DataSource      `json:"data_source"`
	Names       []string        `json:"names,omitempty"`
	Table       [][]string      `json:"table,omitempty"`
	Levels      []string        `json:"levels"`
	SourceFiles []SourceFileRef `json:"source_files"`
	OutputRoot  string          `json:"output_root"`
	LevelPolicy LevelPolicy     `json:"level_policy,omitempty"`
}

// GenerationResult accumulates the outcome of one run. Created empty at the
// start of a Process call, mutated only by that call, returned verbatim.
type GenerationResult struct {
	SuccessCount int      `json:"success_count"`
	FailCount    int      `json:"fail_count"`
	FolderCount  int      `json:"folder_count"`
	FailDetails  []string `json:"fail_details"`
}

// AddFailure appends one human-readable failure message and counts it.
func (r *GenerationResult) AddFailure(msg string) {
	r.FailDetails = append(r.FailDetails, msg)
	r.FailCount++
}

// AddDiagnostic appends a message without charging the failure counter.
// Used for dropped-level diagnostics that skip no unit of work.
func (r *GenerationResult) AddDiagnostic(msg string) {
	r.FailDetails = append(r.FailDetails, msg)
}
