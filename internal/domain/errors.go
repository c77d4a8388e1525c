package domain

import "fmt"

// DataAccessError reports an input file or sheet that could not be read.
type DataAccessError struct {
	Path  string
	Sheet string
	Err   error
}

func (e *DataAccessError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("cannot read sheet %q of %s: %v", e.Sheet, e.Path, e.Err)
	}
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// SchemaError reports a column role that the loaded header does not provide.
type SchemaError struct {
	Sheet  string
	Role   Role
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "column not found"
	}
	if e.Role != "" {
		return fmt.Sprintf("sheet %q: %s column %q: %s", e.Sheet, e.Role, e.Column, reason)
	}
	return fmt.Sprintf("sheet %q: column %q: %s", e.Sheet, e.Column, reason)
}

// ParseError reports a result envelope that could not be unwrapped. The
// classifier records it and falls back to the plain text; it never escapes.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("result envelope: %s", e.Reason)
}

// OutputError reports a result artifact that could not be written.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("cannot write %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }
