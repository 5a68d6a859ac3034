package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived, non-reentrant named locks.
type Locker struct {
	client *Client
	prefix string
	logger logging.Logger
	token  func() string
}

// NewLocker builds a Locker whose keys live under prefix + "lock:".
func NewLocker(client *Client, prefix string, log logging.Logger) *Locker {
	return &Locker{
		client: client,
		prefix: prefix + "lock:",
		logger: log,
		token:  func() string { return uuid.NewString() },
	}
}

// TryLock takes name for at most ttl. ok is false when another holder has
// it. The returned release is safe to call more than once.
func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error) {
	key := l.prefix + name
	token := l.token()

	ok, err = l.client.Raw().SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to acquire lock")
	}
	if !ok {
		return nil, false, nil
	}

	released := false
	release = func() {
		if released {
			return
		}
		released = true
		// The caller's context may already be cancelled.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client.Raw(), []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release lock", logging.String("lock", name), logging.Err(err))
		}
	}
	return release, true, nil
}

//Personal.AI order the ending
