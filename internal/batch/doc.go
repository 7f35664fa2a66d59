// Package batch runs a recolor batch: it decodes the job descriptor, maps the
// shared palettes once, and fans the images out over a bounded worker pool.
//
// # Descriptor
//
// Two JSON encodings are accepted on input. The explicit form carries the
// palettes once, next to the job list:
//
//	{
//	  "base_palette":   ["#000000", "#FFFFFF"],
//	  "target_palette": ["#1E1E2E", "#CDD6F4"],
//	  "jobs": [{"img_path": "in/left_ptr.png", "out_path": "out/left_ptr.png"}]
//	}
//
// The legacy form is a bare array of jobs where only the first job's
// base_palette and target_palette are used:
//
//	[{"img_path": "...", "out_path": "...", "base_palette": [...], "target_palette": [...]}, ...]
//
// Either way one palette pair applies to the whole batch. A later job that
// carries different palettes is logged as a warning and processed with the
// batch palettes.
//
// # Errors
//
// A *ConfigError (bad descriptor) or *palette.PaletteError (bad palettes)
// stops the batch before any image is read. Per-image failures are recorded in
// the Report and never stop other jobs.
package batch
