package target

import "fmt"

// NameParseError reports a filename that passed a template's filter but
// yielded no target name from the pattern's capture group.
type NameParseError struct {
	File    string
	Pattern string
}

func (e *NameParseError) Error() string {
	return fmt.Sprintf("target name not found in %q (pattern %s)", e.File, e.Pattern)
}

// ParseError reports a definition file whose content could not be read or
// loaded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse target file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
