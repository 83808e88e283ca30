package lock

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisLocker 基于 Redis 的按 key 互斥锁工厂
// 多实例部署时保证跨进程的账户级串行化
type RedisLocker struct {
	client        *redis.Client
	expiration    time.Duration
	retryInterval time.Duration
	maxRetries    int
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:        client,
		expiration:    30 * time.Second,
		retryInterval: 100 * time.Millisecond,
		maxRetries:    30,
	}
}

// Lock 获取 key 上的锁，返回释放函数
// value 使用随机 UUID，便于追踪持有者并防止误删
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	d := NewDistributedLock(l.client, "lock:"+key, uuid.NewString(), l.expiration)
	if err := d.Lock(ctx, l.retryInterval, l.maxRetries); err != nil {
		return nil, err
	}
	return func() {
		// 释放用独立上下文：请求取消不应导致锁滞留到超时
		_ = d.Unlock(context.Background())
	}, nil
}

// LocalLocker 进程内按 key 互斥锁
// 单实例部署与测试使用；与 RedisLocker 行为等价但不跨进程
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
