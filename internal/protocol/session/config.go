package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/mossctl/internal/protocol"
)

// ResponseMode selects how the final result is read.
type ResponseMode string

const (
	// ReadUntilClose reads until the server closes the connection.
	ReadUntilClose ResponseMode = "until_close"
	// ReadSingle performs one bounded read, like the classic clients.
	ReadSingle ResponseMode = "single"
)

// Config defines transport defaults. A zero timeout disables that deadline.
// When ResponseTimeout expires in ReadUntilClose mode after some of the
// result has arrived, Submit returns those bytes instead of failing.
type Config struct {
	Address            string
	ConnectTimeout     time.Duration
	WriteTimeout       time.Duration
	AckTimeout         time.Duration
	ResponseTimeout    time.Duration
	AckBufferSize      int
	ResponseMode       ResponseMode
	ResponseBufferSize int
	MaxResponseBytes   int64
}

// DefaultConfig returns defaults aimed at the public Moss server, which can
// take minutes to produce a result.
func DefaultConfig() Config {
	return Config{
		Address:            protocol.Default().Endpoint().Address(),
		ConnectTimeout:     30 * time.Second,
		WriteTimeout:       2 * time.Minute,
		AckTimeout:         time.Minute,
		ResponseTimeout:    10 * time.Minute,
		AckBufferSize:      protocol.ChunkSize,
		ResponseMode:       ReadUntilClose,
		ResponseBufferSize: protocol.ChunkSize,
		MaxResponseBytes:   protocol.DefaultMaxResponseBytes,
	}
}

// WithDefaults fills unset address, buffer and mode fields. Timeouts are left
// alone so zero keeps meaning "no deadline".
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.Address) == "" {
		c.Address = def.Address
	}
	if c.AckBufferSize <= 0 {
		c.AckBufferSize = def.AckBufferSize
	}
	if strings.TrimSpace(string(c.ResponseMode)) == "" {
		c.ResponseMode = def.ResponseMode
	}
	c.ResponseMode = ResponseMode(strings.ToLower(strings.TrimSpace(string(c.ResponseMode))))
	if c.ResponseBufferSize <= 0 {
		c.ResponseBufferSize = def.ResponseBufferSize
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = def.MaxResponseBytes
	}
	return c
}

func (c Config) Validate() error {
	switch c.ResponseMode {
	case ReadUntilClose, ReadSingle:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResponseMode, c.ResponseMode)
	}
	if c.ConnectTimeout < 0 || c.WriteTimeout < 0 || c.AckTimeout < 0 || c.ResponseTimeout < 0 {
		return ErrNegativeTimeout
	}
	return nil
}

// ParseResponseMode accepts the config/flag spelling of a mode.
func ParseResponseMode(raw string) (ResponseMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "until_close", "until-close", "full":
		return ReadUntilClose, nil
	case "single", "once":
		return ReadSingle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResponseMode, raw)
	}
}
