package session

// Session is the decoded payload: the signed-in user's id and an optional
// one-shot flash message.
type Session struct {
	userID    string
	flash     string
	flashRead bool
}

// New returns an empty session.
func New() *Session { return &Session{} }

// UserID returns the stored user id, if any.
func (s *Session) UserID() (string, bool) {
	return s.userID, s.userID != ""
}

// SetUserID stores the signed-in user's id.
func (s *Session) SetUserID(id string) { s.userID = id }

// SetFlash stores a message to be shown on the next request.
func (s *Session) SetFlash(msg string) {
	s.flash = msg
	s.flashRead = false
}

// Flash returns the flash message and marks it consumed.
func (s *Session) Flash() string {
	if s.flashRead {
		return ""
	}
	s.flashRead = true
	return s.flash
}

// Empty reports whether the session carries no data.
func (s *Session) Empty() bool {
	return s.userID == "" && (s.flash == "" || s.flashRead)
}
