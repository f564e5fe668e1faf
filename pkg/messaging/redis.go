package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Publisher 메시지 발행 인터페이스
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

// Event 발행되는 메시지 봉투
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// NewEvent 현재 시각(UTC)으로 이벤트를 생성합니다
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// redisPublisher Redis Pub/Sub 기반 발행자
type redisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher Redis 발행자 생성
func NewRedisPublisher(addr, password string, db int) (Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Redis 연결 테스트
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis 연결 실패: %w", err)
	}

	return &redisPublisher{client: client}, nil
}

// Publish 메시지를 JSON으로 직렬화해 발행합니다
func (r *redisPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("메시지 직렬화 실패: %w", err)
	}

	return r.client.Publish(ctx, channel, payload).Err()
}

// Close Redis 클라이언트 종료
func (r *redisPublisher) Close() error {
	return r.client.Close()
}

// nopPublisher Redis가 설정되지 않았을 때 사용하는 발행자
type nopPublisher struct{}

// NewNopPublisher 아무 것도 하지 않는 발행자
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (nopPublisher) Close() error {
	return nil
}
