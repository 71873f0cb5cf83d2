package moss

import "github.com/danmuck/mossctl/internal/protocol"

// AddBaseFile registers reference material uploaded under id 0. An empty
// displayName defaults to path.
func (s *Session) AddBaseFile(path, displayName string) error {
	entry, err := s.resolve(path, displayName, true)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseFiles = append(s.baseFiles, entry)
	return nil
}

// AddFile registers a submission file. Registration order fixes the id the
// server reports it under (1, 2, ...).
func (s *Session) AddFile(path, displayName string) error {
	entry, err := s.resolve(path, displayName, false)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, entry)
	return nil
}

func (s *Session) BaseFiles() []FileEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FileEntry(nil), s.baseFiles...)
}

func (s *Session) Files() []FileEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FileEntry(nil), s.files...)
}

// Ready reports whether the server will accept a query; it needs at least
// one submission file.
func (s *Session) Ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.files) == 0 {
		return ErrNoFiles
	}
	return nil
}

func (s *Session) resolve(path, displayName string, base bool) (FileEntry, error) {
	if !s.fs.Exists(path) {
		return FileEntry{}, &RegistrationError{Path: path, Base: base, Err: ErrFileNotFound}
	}
	size, err := s.fs.Size(path)
	if err != nil {
		return FileEntry{}, &RegistrationError{Path: path, Base: base, Err: err}
	}
	if size == 0 {
		return FileEntry{}, &RegistrationError{Path: path, Base: base, Err: ErrEmptyFile}
	}
	if displayName == "" {
		displayName = path
	}
	displayName = protocol.SanitizeDisplayName(displayName)
	if err := protocol.CheckDisplayName(displayName); err != nil {
		return FileEntry{}, &RegistrationError{Path: path, Base: base, Err: err}
	}
	return FileEntry{Path: path, Size: size, DisplayName: displayName}, nil
}
