package auth

// SessionEventType tells whether a session started or ended
type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "signed_in"
	SessionSignedOut SessionEventType = "signed_out"
)

// SessionEvent is published to subscribers whenever an administrator signs in or out
type SessionEvent struct {
	Type  SessionEventType
	Token *Token
}
