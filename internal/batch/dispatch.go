package batch

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/cursor-recolor/internal/imaging"
	"github.com/ironsheep/cursor-recolor/internal/palette"
)

// Options configures Run.
type Options struct {
	// Workers is the maximum number of images processed at once.
	// Values below 1 mean runtime.GOMAXPROCS(0).
	Workers int

	// Logger receives per-job records and the batch summary, all at debug
	// level.
	// nil means slog.Default().
	Logger *slog.Logger
}

// Outcome is the result of one job.
type Outcome struct {
	Index    int
	Job      Job
	Stats    imaging.RecolorStats
	Duration time.Duration
	Err      error
}

// Report aggregates the outcomes of a batch in job order.
type Report struct {
	Outcomes  []Outcome
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Failures returns the failed outcomes in job order.
func (r *Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// WriteFailures writes one "Failed to process" line per failed job.
func (r *Report) WriteFailures(w io.Writer) error {
	for _, o := range r.Failures() {
		if _, err := fmt.Fprintf(w, "Failed to process %s: %v\n", o.Job.ImgPath, o.Err); err != nil {
			return err
		}
	}
	return nil
}

// Run recolors every job of b.
//
// The palettes are mapped once before any job starts. Jobs then run on at most
// opts.Workers goroutines; each loads its image, recolors it and writes the
// output. A failing job is recorded in the Report and does not affect the
// others, so a nil error with Report.Failed > 0 is a normal partial success.
//
// Returns a *ConfigError for a batch that fails Validate and a
// *palette.PaletteError for unusable palettes, in both cases before any file
// is touched.
func Run(b *Batch, opts Options) (*Report, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	m, err := palette.MapHexPalettes(b.BasePalette, b.TargetPalette)
	if err != nil {
		return nil, err
	}

	return runMapped(m, b.Jobs, opts), nil
}

// runMapped recolors jobs with an already built Mapping. Its own logs are at
// debug level so stderr at the default level carries only failure lines.
func runMapped(m *palette.Mapping, jobs []Job, opts Options) *Report {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	logger.Debug("starting batch", "jobs", len(jobs), "workers", workers, "palette_size", m.Len())
	start := time.Now()

	outcomes := make([]Outcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		i, job := i, job // per-iteration copies (module builds with go 1.21 loop semantics)
		g.Go(func() error {
			outcomes[i] = runJob(logger, m, i, job)
			return nil
		})
	}
	g.Wait()

	report := &Report{Outcomes: outcomes, Elapsed: time.Since(start)}
	for _, o := range outcomes {
		if o.Err != nil {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}

	logger.Debug("batch complete", "succeeded", report.Succeeded, "failed", report.Failed,
		"elapsed", report.Elapsed.Round(time.Millisecond))
	return report
}

func runJob(logger *slog.Logger, m *palette.Mapping, index int, job Job) (out Outcome) {
	out = Outcome{Index: index, Job: job}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("panic: %v", r)
		}
		out.Duration = time.Since(start)
	}()

	out.Stats, out.Err = Process(job, m)

	if out.Err == nil {
		logger.Debug("recolored image", "img", job.ImgPath, "out", job.OutPath,
			"opaque", out.Stats.Opaque, "translucent", out.Stats.Translucent,
			"transparent", out.Stats.Transparent, "elapsed", time.Since(start))
	}
	return out
}

// Process recolors a single job: load, recolor, write.
func Process(job Job, m *palette.Mapping) (imaging.RecolorStats, error) {
	img, err := imaging.Load(job.ImgPath)
	if err != nil {
		return imaging.RecolorStats{}, err
	}

	recolored, stats := imaging.RecolorWithStats(img, m)

	if err := imaging.SavePNG(recolored, job.OutPath); err != nil {
		return stats, err
	}
	return stats, nil
}
