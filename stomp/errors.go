package stomp

import (
	"errors"
	"fmt"
)

// The error taxonomy below is what the CLI maps to exit codes. Every one
// of these is fatal to the current document's analysis: no partial verdict
// is ever produced, so "could not analyze" can never be confused with
// "analyzed and clean".

// UsageError reports bad command-line input, including files that are not
// Office documents at all.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// ToolNotFoundError reports a missing external dependency or an unset or
// invalid installation path.
type ToolNotFoundError struct {
	Tool string
	Hint string
}

func (e *ToolNotFoundError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s not found", e.Tool)
	}
	return fmt.Sprintf("%s not found: %s", e.Tool, e.Hint)
}

// ExternalToolError reports an external process that exited nonzero or
// produced unreadable output.
type ExternalToolError struct {
	Tool   string
	Err    error
	Stderr string
}

func (e *ExternalToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %v: %s", e.Tool, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// ParseError reports extractor input that does not match the expected
// grammar even though the external tool itself succeeded. Extractors
// return it instead of manufacturing an empty representation, which would
// turn into a false "clean" or false "fully stomped" verdict downstream.
type ParseError struct {
	Origin Origin
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s input: %s", e.Origin, e.Msg)
}

// IsUsage reports whether err is a UsageError.
func IsUsage(err error) bool {
	var target *UsageError
	return errors.As(err, &target)
}

// IsToolNotFound reports whether err is a ToolNotFoundError.
func IsToolNotFound(err error) bool {
	var target *ToolNotFoundError
	return errors.As(err, &target)
}

// IsExternalTool reports whether err is an ExternalToolError.
func IsExternalTool(err error) bool {
	var target *ExternalToolError
	return errors.As(err, &target)
}

// IsParse reports whether err is a ParseError.
func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}
