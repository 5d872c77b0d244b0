package ampidx

import "errors"

// ErrInputMalformed reports a structurally invalid record. A full_keywords
// expansion whose length does not match keywords is reported by
// ErrFullKeywordLengthMismatch instead.
var ErrInputMalformed = errors.New("ampidx: input record is malformed")

// ErrBuildCapacityExceeded reports a dictionary that would overflow its
// 32-bit id space.
var ErrBuildCapacityExceeded = errors.New("ampidx: dictionary capacity exceeded")

// ErrFullKeywordLengthMismatch is returned when a record's full_keywords
// run-length expansion does not have the same length as its keywords list.
var ErrFullKeywordLengthMismatch = errors.New("ampidx: full_keywords expansion length does not match keywords length")
