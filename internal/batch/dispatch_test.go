package batch

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/cursor-recolor/internal/imaging"
	"github.com/ironsheep/cursor-recolor/internal/palette"
)

// writeSprite writes a small cursor-like PNG: a transparent border, a
// translucent ring and an opaque core of the given color.
func writeSprite(t *testing.T, path string, core color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			switch {
			case x == 0 || y == 0 || x == 7 || y == 7:
				img.SetNRGBA(x, y, color.NRGBA{90, 80, 70, 0})
			case x == 1 || y == 1 || x == 6 || y == 6:
				img.SetNRGBA(x, y, color.NRGBA{core.R, core.G, core.B, 100})
			default:
				img.SetNRGBA(x, y, core)
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("WalkDir failed: %v", err)
	}
	return n
}

var (
	testBase   = []string{"#000000", "#FFFFFF"}
	testTarget = []string{"#202020", "#FF8800"}
)

func TestRun_RecolorsAndPreservesAlpha(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in", "left_ptr.png")
	out := filepath.Join(dir, "out", "nested", "left_ptr.png")
	os.MkdirAll(filepath.Dir(in), 0o755)
	writeSprite(t, in, color.NRGBA{255, 255, 255, 255})

	b := &Batch{BasePalette: testBase, TargetPalette: testTarget, Jobs: []Job{{ImgPath: in, OutPath: out}}}
	report, err := Run(b, Options{Workers: 2, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 0 {
		t.Fatalf("report: %d succeeded, %d failed", report.Succeeded, report.Failed)
	}

	src, err := imaging.Load(in)
	if err != nil {
		t.Fatalf("Load input failed: %v", err)
	}
	dst, err := imaging.Load(out)
	if err != nil {
		t.Fatalf("Load output failed: %v", err)
	}
	if dst.Bounds() != src.Bounds() {
		t.Fatalf("bounds: got %v, want %v", dst.Bounds(), src.Bounds())
	}

	for i := 0; i < len(src.Pix); i += 4 {
		if dst.Pix[i+3] != src.Pix[i+3] {
			t.Fatalf("alpha changed at byte %d", i)
		}
	}
	if got := dst.NRGBAAt(0, 0); got != (color.NRGBA{90, 80, 70, 0}) {
		t.Errorf("transparent border: got %v, want {90 80 70 0}", got)
	}
	if got := dst.NRGBAAt(4, 4); got != (color.NRGBA{0xFF, 0x88, 0x00, 255}) {
		t.Errorf("white core: got %v, want #FF8800", got)
	}
	if got := dst.NRGBAAt(1, 1); got != (color.NRGBA{0x20, 0x20, 0x20, 100}) {
		t.Errorf("translucent ring should blend as black: got %v, want {32 32 32 100}", got)
	}
}

func TestRun_BatchIsolation(t *testing.T) {
	dir := t.TempDir()
	jobs := make([]Job, 3)
	for i, name := range []string{"a", "b", "c"} {
		jobs[i] = Job{
			ImgPath: filepath.Join(dir, "in", name+".png"),
			OutPath: filepath.Join(dir, "out", name+".png"),
		}
	}
	os.MkdirAll(filepath.Join(dir, "in"), 0o755)
	writeSprite(t, jobs[0].ImgPath, color.NRGBA{0, 0, 0, 255})
	writeSprite(t, jobs[2].ImgPath, color.NRGBA{255, 255, 255, 255})
	// jobs[1] has no input file

	b := &Batch{BasePalette: testBase, TargetPalette: testTarget, Jobs: jobs}
	report, err := Run(b, Options{Workers: 3, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("Run should not fail on a per-image error: %v", err)
	}
	if report.Succeeded != 2 || report.Failed != 1 {
		t.Errorf("report: %d succeeded, %d failed, want 2 and 1", report.Succeeded, report.Failed)
	}

	for _, i := range []int{0, 2} {
		if _, err := os.Stat(jobs[i].OutPath); err != nil {
			t.Errorf("job %d output missing: %v", i, err)
		}
	}
	if _, err := os.Stat(jobs[1].OutPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("job 1 should not produce output, stat err: %v", err)
	}

	failures := report.Failures()
	if len(failures) != 1 || failures[0].Index != 1 {
		t.Fatalf("failures: got %+v", failures)
	}
	var ie *imaging.ImageError
	if !errors.As(failures[0].Err, &ie) {
		t.Errorf("failure should be an *imaging.ImageError, got %T", failures[0].Err)
	}

	var diag bytes.Buffer
	if err := report.WriteFailures(&diag); err != nil {
		t.Fatalf("WriteFailures failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(diag.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one diagnostic line, got %q", diag.String())
	}
	if !strings.HasPrefix(lines[0], "Failed to process "+jobs[1].ImgPath+": ") {
		t.Errorf("diagnostic line: got %q", lines[0])
	}
}

func TestRun_OutcomesInJobOrder(t *testing.T) {
	dir := t.TempDir()
	var jobs []Job
	for i := 0; i < 12; i++ {
		in := filepath.Join(dir, "in", string(rune('a'+i))+".png")
		jobs = append(jobs, Job{ImgPath: in, OutPath: filepath.Join(dir, "out", filepath.Base(in))})
	}
	os.MkdirAll(filepath.Join(dir, "in"), 0o755)
	for _, j := range jobs {
		writeSprite(t, j.ImgPath, color.NRGBA{128, 128, 128, 255})
	}

	b := &Batch{BasePalette: testBase, TargetPalette: testTarget, Jobs: jobs}
	report, err := Run(b, Options{Workers: 4, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, o := range report.Outcomes {
		if o.Index != i || o.Job != jobs[i] {
			t.Errorf("outcome %d: got index %d job %+v", i, o.Index, o.Job)
		}
		if o.Err != nil {
			t.Errorf("outcome %d failed: %v", i, o.Err)
		}
		if o.Stats.Opaque != 16 || o.Stats.Translucent != 20 || o.Stats.Transparent != 28 {
			t.Errorf("outcome %d stats: %+v", i, o.Stats)
		}
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	for _, b := range []*Batch{nil, {BasePalette: testBase, TargetPalette: testTarget}} {
		_, err := Run(b, Options{Logger: discardLogger()})
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("expected *ConfigError, got %v", err)
		}
	}
}

func TestRun_PaletteMismatchWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeSprite(t, in, color.NRGBA{0, 0, 0, 255})
	outDir := filepath.Join(dir, "out")

	b := &Batch{
		BasePalette:   []string{"#000000", "#FFFFFF", "#FF0000"},
		TargetPalette: []string{"#000000", "#FFFFFF"},
		Jobs:          []Job{{ImgPath: in, OutPath: filepath.Join(outDir, "in.png")}},
	}
	report, err := Run(b, Options{Logger: discardLogger()})
	if err == nil {
		t.Fatal("Run should fail on mismatched palettes")
	}
	if report != nil {
		t.Errorf("Run should not return a report on a fatal error")
	}
	var pe *palette.PaletteError
	if !errors.As(err, &pe) {
		t.Errorf("expected *palette.PaletteError, got %T: %v", err, err)
	}
	if n := countFiles(t, outDir); n != 0 {
		t.Errorf("expected no output files, found %d", n)
	}
}

func TestRun_InvalidHexIsPaletteError(t *testing.T) {
	b := &Batch{
		BasePalette:   []string{"#000000"},
		TargetPalette: []string{"#XYZXYZ"},
		Jobs:          []Job{{ImgPath: "a.png", OutPath: "b.png"}},
	}
	_, err := Run(b, Options{Logger: discardLogger()})
	var pe *palette.PaletteError
	if !errors.As(err, &pe) {
		t.Errorf("expected *palette.PaletteError, got %v", err)
	}
}

func TestProcess_CorruptInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.png")
	os.WriteFile(in, []byte("\x89PNG not really"), 0o644)

	m, err := palette.MapHexPalettes(testBase, testTarget)
	if err != nil {
		t.Fatalf("MapHexPalettes failed: %v", err)
	}
	_, err = Process(Job{ImgPath: in, OutPath: filepath.Join(dir, "out.png")}, m)
	var ie *imaging.ImageError
	if !errors.As(err, &ie) || ie.Op != "decode" {
		t.Errorf("expected decode *imaging.ImageError, got %v", err)
	}
}

func TestRun_QuietAtInfoLevel(t *testing.T) {
	dir := t.TempDir()
	job := Job{ImgPath: filepath.Join(dir, "a.png"), OutPath: filepath.Join(dir, "out", "a.png")}
	writeSprite(t, job.ImgPath, color.NRGBA{0, 0, 0, 255})

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	b := &Batch{BasePalette: testBase, TargetPalette: testTarget, Jobs: []Job{job}}

	if _, err := Run(b, Options{Logger: logger}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if logs.Len() != 0 {
		t.Errorf("batch should log nothing at info level, got:\n%s", logs.String())
	}
}
