package moss

import (
	"context"
	"strings"
	"sync"

	"github.com/danmuck/mossctl/internal/protocol"
	"github.com/danmuck/mossctl/internal/protocol/session"
)

// FileEntry is one registered file. Size is captured at registration and is
// not re-checked before upload.
type FileEntry struct {
	Path        string
	Size        int64
	DisplayName string
}

type Session struct {
	profile   *protocol.Profile
	fs        FileSystem
	transport session.Config
	dialer    session.Dialer

	mu        sync.RWMutex
	settings  protocol.Settings
	baseFiles []FileEntry
	files     []FileEntry
}

// New creates a Session for userID comparing files written in language.
// language must be one of the profile's supported tags. The session dials
// the profile endpoint unless WithTransportConfig names an address.
func New(userID int64, language string, opts ...Option) (*Session, error) {
	transport := session.DefaultConfig()
	transport.Address = ""
	s := &Session{
		profile:   protocol.Default(),
		fs:        OSFileSystem{},
		transport: transport,
		settings:  protocol.DefaultSettings(userID, language),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.profile.CheckLanguage(language); err != nil {
		return nil, err
	}
	if err := protocol.CheckComment(s.settings.Comment); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.transport.Address) == "" {
		s.transport.Address = s.profile.Endpoint().Address()
	}
	return s, nil
}

// Address is the host:port Submit dials.
func (s *Session) Address() string {
	return s.transport.Address
}

func (s *Session) UserID() int64 {
	return s.settings.UserID
}

func (s *Session) Language() string {
	return s.settings.Language
}

func (s *Session) Profile() *protocol.Profile {
	return s.profile
}

// Settings returns a copy of the handshake/query settings.
func (s *Session) Settings() protocol.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Session) SetIgnoreLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.IgnoreLimit = n
}

func (s *Session) SetShowMatches(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.ShowMatches = n
}

func (s *Session) SetDirectoryMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.DirectoryMode = on
}

func (s *Session) SetExperimentalServer(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Experimental = on
}

// Submit uploads every registered file and returns the server response,
// usually a line holding the result URL.
func (s *Session) Submit(ctx context.Context) (string, error) {
	t, err := session.NewTransport(s.transport, s.dialer)
	if err != nil {
		return "", err
	}
	return t.Submit(ctx, s.request())
}

func (s *Session) request() session.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return session.Request{
		Settings:  s.settings,
		BaseFiles: toTransportFiles(s.baseFiles),
		Files:     toTransportFiles(s.files),
		Source:    s.fs,
	}
}

func toTransportFiles(entries []FileEntry) []session.File {
	out := make([]session.File, len(entries))
	for i, e := range entries {
		out[i] = session.File{Path: e.Path, Size: e.Size, DisplayName: e.DisplayName}
	}
	return out
}
