package auth

import "context"

// LoginTestChecker is used in tests and local development, where a real
// redis-backed session store is too much ceremony.
type LoginTestChecker struct {
	// LoggedSessions maps a session token to the logged user ID.
	LoggedSessions map[string]int
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		map[string]int{},
	}
}

func (c *LoginTestChecker) LoggedUserID(_ context.Context, token string) (int, error) {
	userID, ok := c.LoggedSessions[token]
	if !ok {
		return 0, ErrNotLoggedIn
	}
	return userID, nil
}
