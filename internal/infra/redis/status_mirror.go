package redis

import (
	"context"
	"encoding/json"
	"time"

	"live-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const mirrorKey = "live:session:status"

// StatusMirror writes the session status view to Redis after every committed
// transition so operators can watch the session without hitting the service.
// Strictly best-effort: a dead Redis never fails or delays a transition.
type StatusMirror struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusMirror(client *redis.Client, ttl time.Duration) *StatusMirror {
	return &StatusMirror{client: client, ttl: ttl}
}

func (m *StatusMirror) Record(ctx context.Context, status domain.SessionStatus) {
	data, err := json.Marshal(status)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	_ = m.client.Set(ctx, mirrorKey, data, m.ttl).Err()
}
