package protocol

const (
	DefaultIgnoreLimit = 10
	DefaultShowMatches = 250
)

// Settings is everything the handshake and query lines carry.
type Settings struct {
	UserID        int64
	Language      string
	DirectoryMode bool
	Experimental  bool
	IgnoreLimit   int
	ShowMatches   int
	Comment       string
}

// DefaultSettings returns the server defaults for userID and language.
func DefaultSettings(userID int64, language string) Settings {
	return Settings{
		UserID:      userID,
		Language:    language,
		IgnoreLimit: DefaultIgnoreLimit,
		ShowMatches: DefaultShowMatches,
	}
}
