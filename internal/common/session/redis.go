// internal/common/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mic-ai-service/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "chat:session:"

// RedisStore keeps each session as a hash (metadata) plus a list of JSON turns.
// RPUSH and LTRIM are atomic on the server, so concurrent appends interleave
// per call but never lose turns.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore builds a store on client. ttl <= 0 disables expiry.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func metaKey(id string) string  { return keyPrefix + id }
func turnsKey(id string) string { return keyPrefix + id + ":turns" }

func (s *RedisStore) GetOrCreate(ctx context.Context, id string) (*models.ChatSession, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	created := s.now().UTC()
	if err := s.client.HSetNX(ctx, metaKey(id), "created_at", created.Format(time.RFC3339Nano)).Err(); err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}

	meta, err := s.client.HGetAll(ctx, metaKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, meta["created_at"]); err == nil {
		created = ts
	}

	raw, err := s.client.LRange(ctx, turnsKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", id, err)
	}

	history := make([]models.Turn, 0, len(raw))
	for _, item := range raw {
		var turn models.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			continue
		}
		history = append(history, turn)
	}

	return &models.ChatSession{
		ID:      id,
		History: history,
		Context: models.SessionContext{
			CurrentTopic:     meta["current_topic"],
			LastQuestionType: meta["last_question_type"],
		},
		CreatedAt: created,
	}, nil
}

func (s *RedisStore) Append(ctx context.Context, id string, turns ...models.Turn) error {
	if id == "" {
		return ErrEmptySessionID
	}
	if len(turns) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode turn: %w", err)
		}
		values = append(values, string(data))
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, metaKey(id), "created_at", s.now().UTC().Format(time.RFC3339Nano))
		pipe.RPush(ctx, turnsKey(id), values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, metaKey(id), s.ttl)
			pipe.Expire(ctx, turnsKey(id), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append to session %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Trim(ctx context.Context, id string, keep int) error {
	if id == "" {
		return ErrEmptySessionID
	}

	var err error
	if keep <= 0 {
		err = s.client.Del(ctx, turnsKey(id)).Err()
	} else {
		err = s.client.LTrim(ctx, turnsKey(id), int64(-keep), -1).Err()
	}
	if err != nil {
		return fmt.Errorf("trim session %s: %w", id, err)
	}
	return nil
}
