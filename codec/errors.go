package codec

import "errors"

// Decode errors. A single datagram failing any of these must never panic
// the caller; see ingest.Loop for how these are counted and dropped.
var (
	ErrMalformedHeader = errors.New("codec: datagram shorter than the packet header size")
	ErrUnknownKind     = errors.New("codec: unrecognised packet id")
	ErrTruncated       = errors.New("codec: body shorter than the declared packet kind requires")
	ErrMalformedName   = errors.New("codec: name field has no nul terminator and is not valid utf-8")
)
