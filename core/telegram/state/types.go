package state

// State identifies a conversation step.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session is the state of one user plus an opaque payload owned by the
// step that set it.
type Session struct {
	State   State
	Payload string
}

// Idle reports whether the session carries no pending step.
func (s Session) Idle() bool {
	return s.State == "" || s.State == StateIdle
}

// Store maps user ids to sessions. All methods are safe for concurrent use.
//
// Lock serialises whole read-modify-write sequences for one user; callers
// hold it for the duration of an update and release it with the returned
// func. Get, Set and Clear do not take it themselves.
type Store interface {
	Get(userID int64) Session
	Set(userID int64, s Session)
	Clear(userID int64)
	Lock(userID int64) (unlock func())
	Len() int
}
