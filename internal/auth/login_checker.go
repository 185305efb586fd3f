package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	mutex       sync.Mutex    // TODO: now with redis maybe not needed
	redisClient *redis.Client // TODO: add one more cachine layer above redis
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// LoggedUserID returns the user behind the session token, or ErrNotLoggedIn
// when the token is unknown or the session expired.
func (as *LoginChecker) LoggedUserID(ctx context.Context, token string) (int, error) {
	as.mutex.Lock()
	defer as.mutex.Unlock()

	sessionKey := sessionKeyPrefix + token
	cmd := as.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotLoggedIn
		}
		return 0, err
	}

	var session LoginSession
	if err := json.Unmarshal([]byte(cmd.Val()), &session); err != nil {
		return 0, err
	}

	createdAt := time.Unix(session.CreatedAt, 0)
	sessionDuration := time.Since(createdAt)
	if sessionDuration > as.ttl {
		return 0, ErrNotLoggedIn
	}

	return session.UserID, nil
}
