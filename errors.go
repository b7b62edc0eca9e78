package stxtconverter

import "errors"

var (
	// ErrMalformedContainer reports data that is not a styled text container:
	// a bad magic, an unexpected header size or a declared length that does not
	// match the bytes available. Callers may try another format on it.
	ErrMalformedContainer = errors.New("malformed styled text container")

	// ErrInvalidRun is returned when a run cannot be stored in a container.
	ErrInvalidRun = errors.New("invalid style run")

	// ErrInvalidRtf is returned for documents that are not RTF at all.
	ErrInvalidRtf = errors.New("the RTF document is not valid")

	ErrUnsupportedExport = errors.New("parser for conversion does not exist")

	ErrCompressedRtf = errors.New("invalid compressed RTF")
)
