package feed

import "fmt"

// MalformedInputError reports the first structural problem found in an
// uploaded feed: markup that is not well-formed, or a missing/unexpected root
// element. Line is 1-based when known (0 otherwise); Offset is the byte
// offset into the input where the problem was detected.
type MalformedInputError struct {
	Line   int
	Offset int64
	Msg    string
	Err    error
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed feed at line %d (offset %d): %s", e.Line, e.Offset, e.Msg)
	}
	return fmt.Sprintf("malformed feed at offset %d: %s", e.Offset, e.Msg)
}

// Unwrap returns the underlying decoder error, if any.
func (e *MalformedInputError) Unwrap() error {
	return e.Err
}
