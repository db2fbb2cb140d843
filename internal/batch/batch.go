// Package batch merges many independent documents in parallel.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/klauern/lexmerge/internal/codec"
	"github.com/klauern/lexmerge/internal/logging"
	"github.com/klauern/lexmerge/internal/merge"
	"github.com/klauern/lexmerge/internal/strategy"
	"github.com/klauern/lexmerge/internal/tree"
	"github.com/klauern/lexmerge/internal/util"
)

// Job is one three-way merge of files.
type Job struct {
	// Name identifies the job in outcomes and logs, usually the path relative
	// to the batch roots.
	Name string

	Ancestor string
	Ours     string
	Theirs   string

	// Output receives the merged document. Nothing is written when empty.
	Output string
}

// Outcome is the result of one job. Err is set instead of Result when the
// job failed, e.g. because a document could not be read.
type Outcome struct {
	Job      Job
	Result   *merge.Result
	Err      error
	Duration time.Duration
}

// Status classifies an outcome for summaries.
type Status string

const (
	// StatusClean is a merge without conflicts.
	StatusClean Status = "clean"

	// StatusConflicted is a merge with at least one conflict.
	StatusConflicted Status = "conflicted"

	// StatusFailed is a job that produced no result.
	StatusFailed Status = "failed"
)

// Status returns the status of the outcome.
func (o Outcome) Status() Status {
	switch {
	case o.Err != nil || o.Result == nil:
		return StatusFailed
	case o.Result.HasConflicts():
		return StatusConflicted
	default:
		return StatusClean
	}
}

// Options configures a batch run.
type Options struct {
	// Workers bounds the number of concurrent merges. Zero uses GOMAXPROCS.
	Workers int

	// Merge is passed to every merge. Its Logger also receives batch logs.
	Merge merge.Options

	// Indent pretty prints written outputs.
	Indent string

	// Notes writes a notes document next to every output that has records.
	Notes bool

	// BeforeWrite is called with each existing output path before it is
	// overwritten, e.g. to take a backup. An error fails the job.
	BeforeWrite func(path string) error

	// Progress is called once per finished job. Calls are serialized.
	Progress func(o Outcome)
}

// Run merges every job with the strategies in reg. Outcomes are returned in
// job order. A failing job does not stop the others; Run itself only fails
// when ctx is cancelled, in which case jobs not yet started carry ctx's error.
func Run(ctx context.Context, reg *strategy.Registry, jobs []Job, opts Options) ([]Outcome, error) {
	logger := logging.Or(opts.Merge.Logger)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]Outcome, len(jobs))
	var mu sync.Mutex
	timer := logging.StartTimer(logger, "batch")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			var o Outcome
			if err := gctx.Err(); err != nil {
				o = Outcome{Job: job, Err: err}
			} else {
				o = runJob(reg, job, opts)
			}
			outcomes[i] = o

			if o.Err != nil {
				logger.Warn("merge failed", logging.Document(job.Name), logging.Err(o.Err))
			}
			if opts.Progress != nil {
				mu.Lock()
				opts.Progress(o)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	totals := Summarize(outcomes)
	timer.Stop(
		logging.Count(len(jobs)),
		slog.Int("conflicted", totals.Conflicted),
		slog.Int("failed", totals.Failed),
	)
	if err := ctx.Err(); err != nil {
		return outcomes, fmt.Errorf("batch cancelled: %w", err)
	}
	return outcomes, nil
}

func runJob(reg *strategy.Registry, job Job, opts Options) Outcome {
	start := time.Now()
	o := Outcome{Job: job}

	docs := make([]tree.Document, 3)
	for i, src := range []struct {
		role tree.Role
		path string
	}{
		{tree.RoleAncestor, job.Ancestor},
		{tree.RoleOurs, job.Ours},
		{tree.RoleTheirs, job.Theirs},
	} {
		root, err := codec.DecodeFile(src.path)
		if err != nil {
			o.Err = &merge.PreconditionError{Role: src.role, Name: src.path, Err: err}
			o.Duration = time.Since(start)
			return o
		}
		docs[i] = tree.Document{Role: src.role, Root: root, Name: job.Name}
	}

	res, err := merge.Merge(reg, docs[0], docs[1], docs[2], opts.Merge)
	if err != nil {
		o.Err = err
		o.Duration = time.Since(start)
		return o
	}
	o.Result = res

	if job.Output != "" {
		o.Err = write(job.Output, res, opts)
	}
	o.Duration = time.Since(start)
	return o
}

func write(output string, res *merge.Result, opts Options) error {
	notes := util.NotesPath(output)
	writeNotes := opts.Notes && len(res.Records) > 0
	if opts.BeforeWrite != nil {
		for _, p := range []string{output, notes} {
			if _, err := os.Stat(p); err == nil {
				if err := opts.BeforeWrite(p); err != nil {
					return fmt.Errorf("before writing %s: %w", p, err)
				}
			}
		}
	}

	if err := codec.EncodeFile(output, res.Root, codec.Indent(opts.Indent)); err != nil {
		return err
	}
	if writeNotes {
		return codec.EncodeFile(notes, res.Notes(), codec.Indent("  "))
	}
	// notes from an earlier merge into output no longer apply
	if err := os.Remove(notes); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale notes: %w", err)
	}
	return nil
}

// Totals counts outcomes by status.
type Totals struct {
	Clean      int
	Conflicted int
	Failed     int
	Records    int
}

// Summarize counts outcomes by status.
func Summarize(outcomes []Outcome) Totals {
	var t Totals
	for _, o := range outcomes {
		switch o.Status() {
		case StatusClean:
			t.Clean++
		case StatusConflicted:
			t.Conflicted++
		case StatusFailed:
			t.Failed++
		}
		if o.Result != nil {
			t.Records += len(o.Result.Records)
		}
	}
	return t
}

// Errors joins the errors of failed outcomes.
func Errors(outcomes []Outcome) error {
	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Job.Name, o.Err))
		}
	}
	return errors.Join(errs...)
}

// FromDirs pairs the files present under all three directories by relative
// path. Output paths are placed under outDir when it is set. Files missing
// from any directory are returned separately, sorted.
func FromDirs(ancestorDir, oursDir, theirsDir, outDir string, match func(name string) bool) ([]Job, []string, error) {
	relFiles := func(root string) (map[string]bool, error) {
		files := make(map[string]bool)
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if match == nil || match(rel) {
				files[filepath.ToSlash(rel)] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
		return files, nil
	}

	sets := make([]map[string]bool, 3)
	for i, dir := range []string{ancestorDir, oursDir, theirsDir} {
		files, err := relFiles(dir)
		if err != nil {
			return nil, nil, err
		}
		sets[i] = files
	}

	all := make(map[string]bool)
	for _, set := range sets {
		for name := range set {
			all[name] = true
		}
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		jobs    []Job
		missing []string
	)
	for _, name := range names {
		if !sets[0][name] || !sets[1][name] || !sets[2][name] {
			missing = append(missing, name)
			continue
		}
		rel := filepath.FromSlash(name)
		job := Job{
			Name:     name,
			Ancestor: filepath.Join(ancestorDir, rel),
			Ours:     filepath.Join(oursDir, rel),
			Theirs:   filepath.Join(theirsDir, rel),
		}
		if outDir != "" {
			job.Output = filepath.Join(outDir, rel)
		}
		jobs = append(jobs, job)
	}
	return jobs, missing, nil
}
