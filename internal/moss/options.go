package moss

import (
	"github.com/danmuck/mossctl/internal/protocol"
	"github.com/danmuck/mossctl/internal/protocol/session"
)

type Option func(*Session)

func WithIgnoreLimit(n int) Option {
	return func(s *Session) { s.settings.IgnoreLimit = n }
}

func WithShowMatches(n int) Option {
	return func(s *Session) { s.settings.ShowMatches = n }
}

func WithDirectoryMode(on bool) Option {
	return func(s *Session) { s.settings.DirectoryMode = on }
}

func WithExperimentalServer(on bool) Option {
	return func(s *Session) { s.settings.Experimental = on }
}

// WithComment sets the query comment. New rejects one containing a line
// break.
func WithComment(comment string) Option {
	return func(s *Session) { s.settings.Comment = comment }
}

func WithFileSystem(fsys FileSystem) Option {
	return func(s *Session) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithTransportConfig replaces the transport config. An empty Address falls
// back to the profile endpoint.
func WithTransportConfig(cfg session.Config) Option {
	return func(s *Session) { s.transport = cfg }
}

func WithDialer(d session.Dialer) Option {
	return func(s *Session) { s.dialer = d }
}

// WithProfile swaps the server profile, e.g. for a self-hosted server with
// its own language list.
func WithProfile(p *protocol.Profile) Option {
	return func(s *Session) {
		if p != nil {
			s.profile = p
		}
	}
}
