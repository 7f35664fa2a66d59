package palette

// PaletteError reports an unusable palette: a malformed hex entry, an empty
// palette, or base and target palettes of different lengths. It is fatal for
// a batch and is raised before any image is touched.
type PaletteError struct {
	Reason string
	Err    error
}

func (e *PaletteError) Error() string {
	if e.Err != nil {
		return "palette: " + e.Reason + ": " + e.Err.Error()
	}
	return "palette: " + e.Reason
}

func (e *PaletteError) Unwrap() error {
	return e.Err
}
