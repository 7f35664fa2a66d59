package batch

// ConfigError reports a job descriptor that cannot be run at all: malformed
// JSON, an empty job list, or a job missing a required field.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return "config: " + e.Reason + ": " + e.Err.Error()
	}
	return "config: " + e.Reason
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
