package flatvec

import "errors"

// ErrOutOfRange is returned by checked element access when the index is
// outside the vector's bounds. It is a recoverable read-side condition;
// construction-side index violations are builder bugs and panic instead.
var ErrOutOfRange = errors.New("index out of range")
