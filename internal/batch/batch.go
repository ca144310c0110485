// Package batch drives a full run: scan the input directory, normalize
// every candidate clip into the scratch directory, then stream-copy the
// survivors into the final merged file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gwlsn/vidstitch/internal/config"
	"github.com/gwlsn/vidstitch/internal/ffmpeg"
	"github.com/gwlsn/vidstitch/internal/logger"
	"github.com/gwlsn/vidstitch/internal/manifest"
	"github.com/gwlsn/vidstitch/internal/store"
)

// ErrNoInputFiles means the scan matched nothing. A normal, reported
// outcome — not a crash.
var ErrNoInputFiles = errors.New("no video files found")

// ErrEmptyManifest means every candidate failed to normalize, so there
// is nothing to merge. Also a normal, reported outcome.
var ErrEmptyManifest = errors.New("no clips were normalized successfully")

// Result summarizes one batch run.
type Result struct {
	RunID      string
	Scanned    int
	Succeeded  int
	Failed     int
	Merged     bool
	OutputPath string
	MergedSize int64
}

// Runner orchestrates the two-phase workflow: normalize everything,
// then concatenate. Strictly sequential; one ffmpeg process at a time.
type Runner struct {
	cfg     *config.Config
	profile *ffmpeg.Profile
	norm    *ffmpeg.Normalizer
	concat  *ffmpeg.Concatenator
	history store.Store // nil disables run history
}

// NewRunner wires a Runner from the given components. history may be
// nil to disable run recording.
func NewRunner(cfg *config.Config, profile *ffmpeg.Profile, norm *ffmpeg.Normalizer, concat *ffmpeg.Concatenator, history store.Store) *Runner {
	return &Runner{
		cfg:     cfg,
		profile: profile,
		norm:    norm,
		concat:  concat,
		history: history,
	}
}

// Scan enumerates candidate clips. Extensions are matched
// case-insensitively in the configured extension-list order; within an
// extension, names are sorted so the order is stable across reruns.
// A file resolving to the same absolute path as the final output is
// excluded so a re-run in place never consumes its own artifact.
func (r *Runner) Scan() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", r.cfg.InputDir, err)
	}

	outputAbs, err := filepath.Abs(r.cfg.OutputFile)
	if err != nil {
		outputAbs = filepath.Clean(r.cfg.OutputFile)
	}

	// Bucket by extension first so cross-extension order follows the
	// configured list, not directory order
	byExt := make(map[string][]string, len(r.cfg.Extensions))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := normalizeExt(filepath.Ext(name))
		if ext == "" {
			continue
		}
		path := filepath.Join(r.cfg.InputDir, name)
		if abs, err := filepath.Abs(path); err == nil && abs == outputAbs {
			logger.Debug("skipping final output artifact", "path", path)
			continue
		}
		byExt[ext] = append(byExt[ext], path)
	}

	var files []string
	for _, ext := range r.cfg.Extensions {
		group := byExt[normalizeExt(ext)]
		sort.Strings(group)
		files = append(files, group...)
	}
	return files, nil
}

// Run executes the whole batch. Per-file failures are absorbed and
// reported in the Result; only an empty scan, an empty manifest or a
// concat failure surface as errors.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:      uuid.NewString(),
		OutputPath: r.cfg.OutputFile,
	}
	run := &store.Run{
		ID:         res.RunID,
		Mode:       string(r.profile.Mode),
		OutputPath: r.cfg.OutputFile,
		StartedAt:  time.Now(),
	}

	files, err := r.Scan()
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		return res, ErrNoInputFiles
	}
	res.Scanned = len(files)
	run.Scanned = len(files)

	// Full scratch replacement: stale output from a prior run must
	// never leak into this run's manifest
	if err := os.RemoveAll(r.cfg.ScratchDir); err != nil {
		return res, fmt.Errorf("clear scratch dir %s: %w", r.cfg.ScratchDir, err)
	}
	if err := os.MkdirAll(r.cfg.ScratchDir, 0755); err != nil {
		return res, fmt.Errorf("create scratch dir %s: %w", r.cfg.ScratchDir, err)
	}

	var m manifest.Manifest
	for i, input := range files {
		// Output names are indexed by success count, not scan index,
		// so the scratch files stay contiguous when clips fail
		outName := fmt.Sprintf("normalized_%04d.mp4", m.Len())
		outPath := filepath.Join(r.cfg.ScratchDir, outName)

		logger.Info("normalizing", "file", filepath.Base(input), "index", i+1, "total", len(files))

		err := r.norm.Normalize(ctx, input, outPath, r.profile)
		if err != nil {
			// Soft failure: record, skip, keep going. A partial file
			// may remain in scratch; the manifest never references it.
			res.Failed++
			var cmdErr *ffmpeg.CommandError
			if errors.As(err, &cmdErr) {
				logger.Warn("normalize failed", "file", filepath.Base(input), "error", err, "stderr", cmdErr.Tail(5))
			} else {
				logger.Warn("normalize failed", "file", filepath.Base(input), "error", err)
			}
			r.recordFile(&store.FileResult{
				RunID:      res.RunID,
				Position:   i,
				SourcePath: input,
				Error:      err.Error(),
			})
			continue
		}

		if err := m.Append(input, outPath); err != nil {
			res.Failed++
			logger.Warn("normalize failed", "file", filepath.Base(input), "error", err)
			continue
		}
		res.Succeeded++
		r.recordFile(&store.FileResult{
			RunID:      res.RunID,
			Position:   i,
			SourcePath: input,
			OutputPath: outPath,
			Success:    true,
		})
	}

	run.Succeeded = res.Succeeded
	run.Failed = res.Failed

	if m.Len() == 0 {
		run.FinishedAt = time.Now()
		r.recordRun(run)
		return res, ErrEmptyManifest
	}

	listPath := r.cfg.ListPath()
	if err := m.WriteFile(listPath); err != nil {
		run.FinishedAt = time.Now()
		r.recordRun(run)
		return res, fmt.Errorf("write concat list: %w", err)
	}
	logger.Debug("manifest written", "path", listPath, "entries", m.Len())

	// Phase two: merge. Failure here is terminal for the run.
	if err := r.concat.Concat(ctx, listPath, r.cfg.OutputFile); err != nil {
		run.FinishedAt = time.Now()
		r.recordRun(run)
		return res, err
	}
	res.Merged = true
	if info, err := os.Stat(r.cfg.OutputFile); err == nil {
		res.MergedSize = info.Size()
	}

	run.Merged = true
	run.MergedSize = res.MergedSize
	run.FinishedAt = time.Now()
	r.recordRun(run)

	return res, nil
}

// recordRun persists run history. History is best effort: a broken
// database never fails a run that already produced output.
func (r *Runner) recordRun(run *store.Run) {
	if r.history == nil {
		return
	}
	if err := r.history.SaveRun(run); err != nil {
		logger.Warn("could not record run history", "error", err)
	}
}

func (r *Runner) recordFile(res *store.FileResult) {
	if r.history == nil {
		return
	}
	if err := r.history.SaveFileResult(res); err != nil {
		logger.Warn("could not record file result", "error", err)
	}
}

// normalizeExt lowercases and strips the leading dot so config entries
// like "MP4" or ".mp4" all match
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
