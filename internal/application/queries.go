package application

import "github.com/lynnxiaofeng/parkyoga/internal/domain"

// Profile is the read model behind the profile view.
type Profile struct {
	SignedIn bool
	Username string
	Email    string
	IsAdmin  bool
}

func ProfileOf(session domain.Session) Profile {
	if !session.IsAuthenticated() || session.User == nil {
		return Profile{}
	}
	return Profile{
		SignedIn: true,
		Username: session.User.Username,
		Email:    session.User.Email,
		IsAdmin:  session.User.IsAdmin,
	}
}
