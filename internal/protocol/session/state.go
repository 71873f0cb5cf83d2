package session

// State is the transport position within one submission.
type State int

const (
	StateIdle State = iota
	StateConnected
	StateHandshakeSent
	StateAwaitingLanguageAck
	StateLanguageRejected
	StateFilesStreaming
	StateQuerySent
	StateAwaitingResult
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:                "idle",
	StateConnected:           "connected",
	StateHandshakeSent:       "handshake_sent",
	StateAwaitingLanguageAck: "awaiting_language_ack",
	StateLanguageRejected:    "language_rejected",
	StateFilesStreaming:      "files_streaming",
	StateQuerySent:           "query_sent",
	StateAwaitingResult:      "awaiting_result",
	StateDone:                "done",
	StateFailed:              "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateLanguageRejected || s == StateDone || s == StateFailed
}
