package domain

// Session is a read-only view of the authentication state.
// Token and Identity are both set or both absent.
type Session struct {
	Token    string
	Identity *Identity
	Loading  bool
}

// Authenticated reports whether a user is logged in.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.Identity != nil
}

// PersistedSession is the durable copy of a session.
type PersistedSession struct {
	Token    string
	Identity Identity
}
