package protocol

import "errors"

var (
	ErrUnsupportedLanguage  = errors.New("protocol: unsupported language")
	ErrUnrecognizedLanguage = errors.New("protocol: unrecognized language")
	ErrInvalidFileID        = errors.New("protocol: invalid file id")
	ErrInvalidSize          = errors.New("protocol: invalid file size")
	ErrInvalidDisplayName   = errors.New("protocol: invalid display name")
	ErrInvalidComment       = errors.New("protocol: comment contains line break")
	ErrInvalidBufferSize    = errors.New("protocol: invalid buffer size")
	ErrResponseTooLarge     = errors.New("protocol: response too large")
)
