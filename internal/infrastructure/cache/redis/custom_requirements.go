package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/infrastructure/resilience"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(opts Options) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

func Ping(ctx context.Context, client *goredis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// CustomRequirementStore keeps each loan's ad-hoc requirements in a sorted set
// scored by first insertion time, so reads come back in insertion order and
// re-adding a name keeps its original position.
type CustomRequirementStore struct {
	client   *goredis.Client
	ttl      time.Duration
	executor *resilience.Executor
	now      func() time.Time
}

func NewCustomRequirementStore(client *goredis.Client, ttl time.Duration, executor *resilience.Executor) *CustomRequirementStore {
	return &CustomRequirementStore{
		client:   client,
		ttl:      ttl,
		executor: executor,
		now:      time.Now,
	}
}

func customRequirementKey(loanID string) string {
	return "loan:" + loanID + ":custom_requirements"
}

func (s *CustomRequirementStore) Add(ctx context.Context, loanID, name string) error {
	key := customRequirementKey(loanID)
	score := float64(s.now().UnixNano())

	err := resilience.Run(ctx, s.executor, "redis.custom_requirements.add", func(ctx context.Context) error {
		if err := s.client.ZAddNX(ctx, key, goredis.Z{Score: score, Member: name}).Err(); err != nil {
			return fmt.Errorf("redis zadd: %w", err)
		}
		if s.ttl > 0 {
			if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
				return fmt.Errorf("redis expire: %w", err)
			}
		}
		return nil
	}, classifyRedisError)
	return resilience.WrapTemporary("add custom requirement", err, classifyRedisError)
}

func (s *CustomRequirementStore) List(ctx context.Context, loanID string) ([]string, error) {
	names, err := resilience.Do(ctx, s.executor, "redis.custom_requirements.list", func(ctx context.Context) ([]string, error) {
		names, err := s.client.ZRange(ctx, customRequirementKey(loanID), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("redis zrange: %w", err)
		}
		return names, nil
	}, classifyRedisError)
	if err != nil {
		return nil, resilience.WrapTemporary("list custom requirements", err, classifyRedisError)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func classifyRedisError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, goredis.ErrClosed) || errors.Is(err, goredis.ErrPoolTimeout) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
