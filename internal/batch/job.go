package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// Job is one image to recolor.
type Job struct {
	ImgPath string `json:"img_path"`
	OutPath string `json:"out_path"`
}

// Batch is a validated set of jobs sharing one palette pair.
type Batch struct {
	BasePalette   []string `json:"base_palette"`
	TargetPalette []string `json:"target_palette"`
	Jobs          []Job    `json:"jobs"`
}

// jobJSON is a job as it appears on the wire. Palettes are optional on every
// job; in the legacy array form job 0 must carry them.
type jobJSON struct {
	ImgPath       string   `json:"img_path"`
	OutPath       string   `json:"out_path"`
	BasePalette   []string `json:"base_palette,omitempty"`
	TargetPalette []string `json:"target_palette,omitempty"`
}

type batchJSON struct {
	BasePalette   []string  `json:"base_palette"`
	TargetPalette []string  `json:"target_palette"`
	Jobs          []jobJSON `json:"jobs"`
}

// Decode reads and validates a batch descriptor.
//
// Palette contents are not parsed here; that happens once in Run so palette
// problems surface as *palette.PaletteError. A nil logger uses slog.Default.
//
// Returns a *ConfigError if the input is not a descriptor, the job list is
// empty, the palettes are missing, or a job lacks img_path or out_path.
func Decode(r io.Reader, logger *slog.Logger) (*Batch, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ConfigError{Reason: "failed to read job list", Err: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &ConfigError{Reason: "empty job list"}
	}

	var raw batchJSON
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &raw.Jobs); err != nil {
			return nil, &ConfigError{Reason: "malformed job list", Err: err}
		}
		if len(raw.Jobs) > 0 {
			raw.BasePalette = raw.Jobs[0].BasePalette
			raw.TargetPalette = raw.Jobs[0].TargetPalette
		}
	case '{':
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &ConfigError{Reason: "malformed batch", Err: err}
		}
	default:
		return nil, &ConfigError{Reason: "job list must be a JSON array or object"}
	}

	return raw.validate(logger)
}

func (raw *batchJSON) validate(logger *slog.Logger) (*Batch, error) {
	b := &Batch{
		BasePalette:   raw.BasePalette,
		TargetPalette: raw.TargetPalette,
		Jobs:          make([]Job, len(raw.Jobs)),
	}
	for i, j := range raw.Jobs {
		b.Jobs[i] = Job{ImgPath: j.ImgPath, OutPath: j.OutPath}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	for i, j := range raw.Jobs {
		if (j.BasePalette != nil && !samePalette(j.BasePalette, b.BasePalette)) ||
			(j.TargetPalette != nil && !samePalette(j.TargetPalette, b.TargetPalette)) {
			logger.Warn("job palettes differ from batch palettes, using batch palettes",
				"job", i, "img", j.ImgPath)
		}
	}
	return b, nil
}

// Validate checks that the batch has jobs, both palettes, and an input and
// output path on every job. Palette contents are checked by Run.
func (b *Batch) Validate() error {
	if b == nil || len(b.Jobs) == 0 {
		return &ConfigError{Reason: "empty job list"}
	}
	if b.BasePalette == nil {
		return &ConfigError{Reason: "missing base_palette"}
	}
	if b.TargetPalette == nil {
		return &ConfigError{Reason: "missing target_palette"}
	}

	var missing []string
	for i, j := range b.Jobs {
		if strings.TrimSpace(j.ImgPath) == "" {
			missing = append(missing, fmt.Sprintf("jobs[%d].img_path", i))
		}
		if strings.TrimSpace(j.OutPath) == "" {
			missing = append(missing, fmt.Sprintf("jobs[%d].out_path", i))
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Reason: "missing required fields " + strings.Join(missing, ", ")}
	}
	return nil
}

// samePalette compares hex palettes ignoring case and the optional '#'.
func samePalette(a, b []string) bool {
	return slices.EqualFunc(a, b, func(x, y string) bool {
		return strings.EqualFold(strings.TrimPrefix(x, "#"), strings.TrimPrefix(y, "#"))
	})
}
