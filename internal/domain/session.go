package domain

type UserProfile struct {
	Username string
	Email    string
	IsAdmin  bool
}

// Session is the authenticated identity held by the running client. Token
// and User are always set and cleared together.
type Session struct {
	Token   string
	User    *UserProfile
	Loading bool
}

func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

func (s Session) IsAdmin() bool {
	return s.User != nil && s.User.IsAdmin
}

func (s Session) Clone() Session {
	if s.User != nil {
		user := *s.User
		s.User = &user
	}
	return s
}
