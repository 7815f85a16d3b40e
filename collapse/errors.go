package collapse

import "fmt"

// ConfigurationError reports invalid or missing options, mismatched masks,
// or output targets that already exist. It is always returned before any
// record is processed.
type ConfigurationError struct {
	Option string
	Msg    string
}

func (e *ConfigurationError) Error() string {
	if e.Option == "" {
		return "configuration: " + e.Msg
	}
	return fmt.Sprintf("configuration: %s: %s", e.Option, e.Msg)
}

func configErrorf(option, format string, args ...interface{}) error {
	return &ConfigurationError{Option: option, Msg: fmt.Sprintf(format, args...)}
}

// StreamOrderError reports an input pair whose coordinate precedes the
// coordinate of the currently open family. It aborts the run; output written
// before it is not resumable.
type StreamOrderError struct {
	Name    string
	Got     FamilyKey
	Current FamilyKey
}

func (e *StreamOrderError) Error() string {
	return fmt.Sprintf("input is not coordinate sorted: pair %s at %v arrived after %v", e.Name, e.Got, e.Current)
}

// AdapterExtractionError reports a pair whose adapter region cannot be
// extracted. The pair is dropped and processing continues.
type AdapterExtractionError struct {
	Name string
	Err  error
}

func (e *AdapterExtractionError) Error() string {
	return fmt.Sprintf("adapter extraction failed for %s: %v", e.Name, e.Err)
}

// IsConfigurationError reports whether err is a *ConfigurationError.
func IsConfigurationError(err error) bool {
	_, ok := err.(*ConfigurationError)
	return ok
}

// IsStreamOrderError reports whether err is a *StreamOrderError.
func IsStreamOrderError(err error) bool {
	_, ok := err.(*StreamOrderError)
	return ok
}
