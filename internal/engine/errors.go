package engine

import (
	"errors"
	"fmt"
	"io/fs"
)

// ConfigError reports an unusable configuration: no active rules, a bad
// flag combination, an unknown file type or a broken rules file.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TargetNotFoundError is returned when a target named on the command line
// cannot be accessed.
type TargetNotFoundError struct {
	Path string
	Err  error
}

func (e *TargetNotFoundError) Error() string {
	if e.Err != nil && !errors.Is(e.Err, fs.ErrNotExist) {
		return fmt.Sprintf("cannot access target %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("target not found: %s", e.Path)
}

func (e *TargetNotFoundError) Unwrap() error { return e.Err }

// FileReadError wraps a per-file failure. The file is skipped and the scan
// continues.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }
