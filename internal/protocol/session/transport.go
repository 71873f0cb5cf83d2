package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/danmuck/mossctl/internal/protocol"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidResponseMode = errors.New("session: invalid response mode")
	ErrNegativeTimeout     = errors.New("session: negative timeout")
	ErrSourceRequired      = errors.New("session: file source required")
)

// StageError reports the transport state in which a submission failed.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("session: %s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Dialer opens the submission connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// FileSource supplies file bytes at upload time.
type FileSource interface {
	ReadAll(path string) ([]byte, error)
}

// File is one registered upload. Size is the value captured at
// registration and is sent as-is.
type File struct {
	Path        string
	Size        int64
	DisplayName string
}

// Request is a snapshot of everything one submission sends.
type Request struct {
	Settings  protocol.Settings
	BaseFiles []File
	Files     []File
	Source    FileSource
}

// Validate checks every header and the query line before anything is dialed,
// so a bad name or comment never leaves the server with a partial upload.
func (r Request) Validate() error {
	if r.Source == nil {
		return ErrSourceRequired
	}
	lang := r.Settings.Language
	for _, f := range r.BaseFiles {
		h := protocol.FileHeader{ID: protocol.ReferenceFileID, Language: lang, Size: f.Size, DisplayName: f.DisplayName}
		if err := h.Validate(); err != nil {
			return fmt.Errorf("base file %s: %w", f.Path, err)
		}
	}
	for i, f := range r.Files {
		h := protocol.FileHeader{ID: i + 1, Language: lang, Size: f.Size, DisplayName: f.DisplayName}
		if err := h.Validate(); err != nil {
			return fmt.Errorf("file %s: %w", f.Path, err)
		}
	}
	return protocol.CheckComment(r.Settings.Comment)
}

// Transport plays one submission per Submit call over a fresh connection.
// It is not safe for concurrent Submit calls.
type Transport struct {
	cfg    Config
	dialer Dialer
	state  State
}

func NewTransport(cfg Config, dialer Dialer) (*Transport, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	return &Transport{cfg: cfg, dialer: dialer}, nil
}

func (t *Transport) Config() Config {
	return t.cfg
}

// State returns the state reached by the most recent Submit.
func (t *Transport) State() State {
	return t.state
}

// Submit dials the server, plays the handshake, streams base files under
// id 0 and submission files under ids 1..N, sends the query and returns
// the server's response text.
func (t *Transport) Submit(ctx context.Context, req Request) (string, error) {
	t.state = StateIdle
	if err := req.Validate(); err != nil {
		return "", t.fail(err)
	}
	logger := log.With().
		Str("submission", uuid.NewString()).
		Str("addr", t.cfg.Address).
		Logger()

	conn, err := t.dial(ctx)
	if err != nil {
		return "", t.fail(err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	t.state = StateConnected
	logger.Info().Msg("connected to moss server")

	if err := t.handshake(conn, req.Settings); err != nil {
		return "", t.fail(ctxErr(ctx, err))
	}
	if err := t.awaitLanguageAck(conn, req.Settings.Language); err != nil {
		if errors.Is(err, protocol.ErrUnrecognizedLanguage) {
			t.state = StateLanguageRejected
			logger.Warn().Str("language", req.Settings.Language).Msg("language rejected by server")
			return "", &StageError{State: t.state, Err: err}
		}
		return "", t.fail(ctxErr(ctx, err))
	}

	t.state = StateFilesStreaming
	lang := req.Settings.Language
	for _, f := range req.BaseFiles {
		if err := t.upload(conn, req.Source, protocol.ReferenceFileID, lang, f, logger); err != nil {
			return "", t.fail(ctxErr(ctx, err))
		}
	}
	for i, f := range req.Files {
		if err := t.upload(conn, req.Source, i+1, lang, f, logger); err != nil {
			return "", t.fail(ctxErr(ctx, err))
		}
	}

	if err := t.setWriteDeadline(conn); err != nil {
		return "", t.fail(err)
	}
	if err := protocol.WriteQuery(conn, req.Settings.Comment); err != nil {
		return "", t.fail(ctxErr(ctx, err))
	}
	t.state = StateQuerySent
	logger.Info().
		Int("base_files", len(req.BaseFiles)).
		Int("files", len(req.Files)).
		Msg("query submitted, waiting for response")

	t.state = StateAwaitingResult
	raw, err := t.readResult(conn)
	if err != nil && len(raw) > 0 && isTimeout(err) {
		logger.Warn().Err(err).Int("bytes", len(raw)).Msg("response deadline reached, returning data received so far")
		err = nil
	}
	if err != nil {
		return "", t.fail(ctxErr(ctx, err))
	}
	t.state = StateDone
	if len(raw) == 0 {
		logger.Warn().Msg("connection closed before response")
	}
	return protocol.DecodeResponse(raw), nil
}

func (t *Transport) dial(ctx context.Context) (net.Conn, error) {
	if t.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.ConnectTimeout)
		defer cancel()
	}
	return t.dialer.DialContext(ctx, "tcp", t.cfg.Address)
}

func (t *Transport) handshake(conn net.Conn, s protocol.Settings) error {
	if err := t.setWriteDeadline(conn); err != nil {
		return err
	}
	if err := protocol.WriteHandshake(conn, s); err != nil {
		return err
	}
	t.state = StateHandshakeSent
	return nil
}

func (t *Transport) awaitLanguageAck(conn net.Conn, language string) error {
	t.state = StateAwaitingLanguageAck
	if err := setDeadline(conn.SetReadDeadline, t.cfg.AckTimeout); err != nil {
		return err
	}
	ack, err := protocol.ReadChunk(conn, t.cfg.AckBufferSize)
	if err != nil {
		return err
	}
	if protocol.IsLanguageRejected(ack) {
		return fmt.Errorf("%w: %q", protocol.ErrUnrecognizedLanguage, language)
	}
	return nil
}

func (t *Transport) upload(conn net.Conn, src FileSource, id int, lang string, f File, logger zerolog.Logger) error {
	body, err := src.ReadAll(f.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Path, err)
	}
	logger.Debug().
		Int("id", id).
		Str("file", f.DisplayName).
		Str("size", humanize.Bytes(uint64(f.Size))).
		Msg("uploading file")
	if err := t.setWriteDeadline(conn); err != nil {
		return err
	}
	header := protocol.FileHeader{ID: id, Language: lang, Size: f.Size, DisplayName: f.DisplayName}
	return protocol.WriteFile(conn, header, body)
}

func (t *Transport) readResult(conn net.Conn) ([]byte, error) {
	if err := setDeadline(conn.SetReadDeadline, t.cfg.ResponseTimeout); err != nil {
		return nil, err
	}
	if t.cfg.ResponseMode == ReadSingle {
		raw, err := protocol.ReadChunk(conn, t.cfg.ResponseBufferSize)
		if protocol.IsClosed(err) {
			return nil, nil
		}
		return raw, err
	}
	return protocol.ReadUntilClose(conn, t.cfg.MaxResponseBytes)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (t *Transport) setWriteDeadline(conn net.Conn) error {
	return setDeadline(conn.SetWriteDeadline, t.cfg.WriteTimeout)
}

func (t *Transport) fail(err error) error {
	stage := t.state
	t.state = StateFailed
	return &StageError{State: stage, Err: err}
}

func setDeadline(set func(time.Time) error, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return set(time.Now().Add(d))
}

// ctxErr prefers the context error when cancellation closed the socket.
func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("%w: %v", cerr, err)
	}
	return err
}
