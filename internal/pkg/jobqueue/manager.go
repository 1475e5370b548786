package jobqueue

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

var (
	globalQueue *Queue
	queueMu     sync.Mutex
)

// Default creates the process-wide queue once. Callers register
// handlers and then call Start on it.
func Default(client *redis.Client, workers int) *Queue {
	queueMu.Lock()
	defer queueMu.Unlock()
	if globalQueue == nil {
		globalQueue = NewQueue(client, workers)
	}
	return globalQueue
}

// GetQueue returns the process-wide queue or nil.
func GetQueue() *Queue {
	queueMu.Lock()
	defer queueMu.Unlock()
	return globalQueue
}

// StopDefault stops the process-wide queue if one was started.
func StopDefault() {
	queueMu.Lock()
	q := globalQueue
	queueMu.Unlock()
	if q == nil {
		return
	}
	log.Info("[JobQueue] Shutting down")
	q.Stop()
}
