package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxIdleLimiters is the limiter count above which idle limiters are pruned
const maxIdleLimiters = 1024

type chatLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiter allows one command per cooldown, per chat
type limiter struct {
	now      func() time.Time
	limiters map[int64]*chatLimiter

	cooldown time.Duration
	mux      sync.Mutex
}

func newLimiter(cooldown time.Duration) *limiter {
	return &limiter{
		now:      time.Now,
		limiters: make(map[int64]*chatLimiter),
		cooldown: cooldown,
	}
}

// allow returns true if the chat is not in its cooldown
func (l *limiter) allow(chatID int64) bool {
	if l.cooldown <= 0 {
		return true
	}

	l.mux.Lock()
	defer l.mux.Unlock()

	now := l.now()

	if len(l.limiters) > maxIdleLimiters {
		l.prune(now)
	}

	cl, ok := l.limiters[chatID]
	if !ok {
		cl = &chatLimiter{
			limiter: rate.NewLimiter(rate.Every(l.cooldown), 1),
		}

		l.limiters[chatID] = cl
	}

	cl.lastSeen = now

	return cl.limiter.AllowN(now, 1)
}

// prune drops the limiters of chats idle for longer than the cooldown.
// Must be called with the lock held
func (l *limiter) prune(now time.Time) {
	for chatID, cl := range l.limiters {
		if now.Sub(cl.lastSeen) > l.cooldown {
			delete(l.limiters, chatID)
		}
	}
}
