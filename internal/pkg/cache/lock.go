package cache

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// TryLock takes key for ttl if nobody holds it. The returned release func
// deletes the key only while it still carries this holder's token, so a
// holder that outlived ttl cannot drop a lock someone else took since. It is
// a no-op when the lock was not acquired.
func TryLock(ctx context.Context, s Store, key string, ttl time.Duration) (release func(), ok bool, err error) {
	token := uuid.NewString()
	ok, err = s.SetNX(ctx, key, token, ttl)
	if err != nil || !ok {
		return func() {}, false, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		released, err := s.DeleteIfValue(ctx, key, token)
		if err != nil {
			log.Warnf("[Cache] releasing lock %s: %v", key, err)
		} else if !released {
			log.Warnf("[Cache] lock %s expired before release", key)
		}
	}, true, nil
}
