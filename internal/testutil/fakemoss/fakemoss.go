// Package fakemoss is a scripted single-connection Moss server on loopback.
package fakemoss

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/mossctl/internal/protocol"
)

const (
	DefaultAck      = "yes\n"
	DefaultResponse = "http://moss.stanford.edu/results/1/1234567890\n"
)

type Options struct {
	// Ack is written after the six handshake lines.
	Ack string
	// Response is written after the query line.
	Response string
	// CloseBeforeResponse sends nothing after the query line and hangs up,
	// unless HoldOpen is set.
	CloseBeforeResponse bool
	// HoldOpen keeps the connection open after the response until the
	// client hangs up.
	HoldOpen bool
	// WithholdAck never answers the handshake and waits for the client to
	// hang up.
	WithholdAck bool
}

// Upload is one framed file as received.
type Upload struct {
	ID          int
	Language    string
	Size        int64
	DisplayName string
	Body        []byte
}

// Transcript is everything the server saw on its one connection.
type Transcript struct {
	Handshake []string
	Uploads   []Upload
	Query     string
	// Trailing holds bytes received after a rejected or withheld ack.
	Trailing []byte
	Raw      []byte
	Err      error
}

type Server struct {
	ln   net.Listener
	opts Options
	done chan Transcript
}

func Start(t testing.TB, opts Options) *Server {
	t.Helper()
	if opts.Ack == "" {
		opts.Ack = DefaultAck
	}
	if opts.Response == "" {
		opts.Response = DefaultResponse
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("fakemoss listen: %v", err)
	}
	s := &Server{ln: ln, opts: opts, done: make(chan Transcript, 1)}
	t.Cleanup(func() { _ = ln.Close() })
	go s.serve()
	return s
}

func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Wait returns the transcript once the connection has been handled.
func (s *Server) Wait(t testing.TB) Transcript {
	t.Helper()
	select {
	case tr := <-s.done:
		return tr
	case <-time.After(5 * time.Second):
		t.Fatalf("fakemoss: timed out waiting for transcript")
		return Transcript{}
	}
}

func (s *Server) serve() {
	conn, err := s.ln.Accept()
	if err != nil {
		s.done <- Transcript{Err: err}
		return
	}
	defer conn.Close()

	var raw bytes.Buffer
	r := bufio.NewReader(io.TeeReader(conn, &raw))
	tr := s.handle(conn, r)
	tr.Raw = raw.Bytes()
	s.done <- tr
}

func (s *Server) handle(conn net.Conn, r *bufio.Reader) Transcript {
	var tr Transcript
	for i := 0; i < 6; i++ {
		line, err := r.ReadString('\n')
		if err != nil {
			tr.Err = fmt.Errorf("fakemoss: handshake: %w", err)
			return tr
		}
		tr.Handshake = append(tr.Handshake, strings.TrimSuffix(line, "\n"))
	}

	if s.opts.WithholdAck {
		tr.Trailing, _ = io.ReadAll(r)
		return tr
	}
	if _, err := io.WriteString(conn, s.opts.Ack); err != nil {
		tr.Err = err
		return tr
	}
	if protocol.IsLanguageRejected([]byte(s.opts.Ack)) {
		tr.Trailing, _ = io.ReadAll(r)
		return tr
	}

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			tr.Err = fmt.Errorf("fakemoss: expected file or query: %w", err)
			return tr
		}
		line = strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(line, "file "):
			up, err := readUpload(line, r)
			if err != nil {
				tr.Err = err
				return tr
			}
			tr.Uploads = append(tr.Uploads, up)
		case strings.HasPrefix(line, "query "):
			tr.Query = line
			if !s.opts.CloseBeforeResponse {
				if _, err := io.WriteString(conn, s.opts.Response); err != nil {
					tr.Err = err
					return tr
				}
			}
			if s.opts.HoldOpen {
				tr.Trailing, _ = io.ReadAll(r)
			}
			return tr
		default:
			tr.Err = fmt.Errorf("fakemoss: unexpected line %q", line)
			return tr
		}
	}
}

func readUpload(line string, r io.Reader) (Upload, error) {
	parts := strings.SplitN(line, " ", 5)
	if len(parts) != 5 {
		return Upload{}, fmt.Errorf("fakemoss: malformed file line %q", line)
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return Upload{}, fmt.Errorf("fakemoss: file id: %w", err)
	}
	size, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Upload{}, fmt.Errorf("fakemoss: file size: %w", err)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return Upload{}, fmt.Errorf("fakemoss: file body: %w", err)
	}
	return Upload{ID: id, Language: parts[2], Size: size, DisplayName: parts[4], Body: body}, nil
}
