package store

import "time"

// Run is one recorded batch run.
type Run struct {
	ID         string
	Mode       string
	OutputPath string
	Scanned    int
	Succeeded  int
	Failed     int
	Merged     bool
	MergedSize int64
	StartedAt  time.Time
	FinishedAt time.Time
}

// FileResult is the outcome of one clip within a run. Position is the
// processing index, which for successful files is also the manifest
// position.
type FileResult struct {
	RunID      string
	Position   int
	SourcePath string
	OutputPath string
	Success    bool
	Error      string
}

// Store persists run history. Implementations must be safe for use
// from a single process; vidstitch runs strictly sequentially so no
// concurrent writers exist.
type Store interface {
	// SaveRun inserts or updates a run by ID.
	SaveRun(run *Run) error

	// SaveFileResult records one per-file outcome.
	SaveFileResult(res *FileResult) error

	// GetRun retrieves a run by ID. Returns nil if not found.
	GetRun(id string) (*Run, error)

	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(limit int) ([]*Run, error)

	// FileResults returns a run's file outcomes in processing order.
	FileResults(runID string) ([]*FileResult, error)

	// Close releases resources.
	Close() error
}
