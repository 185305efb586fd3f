package auth

import (
	"context"
	"errors"
)

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

// ErrNotLoggedIn is returned for unknown tokens and expired sessions.
var ErrNotLoggedIn = errors.New("not logged in")

type Checker interface {
	LoggedUserID(ctx context.Context, token string) (int, error)
}
