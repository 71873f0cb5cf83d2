package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// ChunkSize is the single-read buffer used for the language ack and, in
	// single-read mode, for the result.
	ChunkSize = 1024

	DefaultMaxResponseBytes = 1 << 20

	// EmptyResponseMessage is returned in place of an empty result.
	EmptyResponseMessage = "Connection closed by Moss before sending response."
)

var rejectToken = []byte("no")

// IsLanguageRejected reports whether the language ack carries the
// case-insensitive token "no" anywhere.
func IsLanguageRejected(ack []byte) bool {
	return bytes.Contains(bytes.ToLower(ack), rejectToken)
}

// ReadChunk performs one bounded read of at most size bytes. Data that
// arrived together with io.EOF is returned without the error; an EOF with no
// data is returned as io.EOF.
func ReadChunk(r io.Reader, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBufferSize, size)
	}
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			return buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// ReadUntilClose reads until the peer closes the stream. More than limit
// bytes yields ErrResponseTooLarge.
func ReadUntilClose(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBufferSize, limit)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return data, err
	}
	if int64(len(data)) > limit {
		return data[:limit], ErrResponseTooLarge
	}
	return data, nil
}

// DecodeResponse turns raw result bytes into text, substituting
// EmptyResponseMessage when nothing arrived.
func DecodeResponse(raw []byte) string {
	if len(raw) == 0 {
		return EmptyResponseMessage
	}
	return strings.ToValidUTF8(string(raw), "�")
}

// IsClosed reports whether err means the server hung up.
func IsClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
