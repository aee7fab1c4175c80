package services

// Identity is the caller of a cart operation: a signed-in user, an anonymous
// session, or a user who still carries the session cookie. A user id always
// wins over the session key.
type Identity struct {
	UserID     string
	SessionKey string
}

// IsAuthenticated reports whether the identity belongs to a signed-in user.
func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}

// IsZero reports whether neither a user nor a session is known.
func (i Identity) IsZero() bool {
	return i.UserID == "" && i.SessionKey == ""
}
