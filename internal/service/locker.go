package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teahouse/internal/infrastructure/lock"
	"teahouse/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RoomLocker 按房间串行化修改
type RoomLocker interface {
	Acquire(ctx context.Context, roomID string) (release func(), err error)
}

type redisRoomLocker struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisRoomLocker 基于 redis 的房间锁，timeout 为锁的过期时间
func NewRedisRoomLocker(client *redis.Client, timeout time.Duration) RoomLocker {
	return &redisRoomLocker{client: client, timeout: timeout}
}

func (l *redisRoomLocker) Acquire(ctx context.Context, roomID string) (func(), error) {
	roomLock := lock.NewRoomLock(l.client, roomID, uuid.NewString(), l.timeout)
	if err := roomLock.Lock(ctx, 50*time.Millisecond, 40); err != nil {
		if errors.Is(err, lock.ErrLockFailed) {
			return nil, ErrSystemBusy
		}
		return nil, fmt.Errorf("获取房间锁失败: %w", err)
	}
	return func() {
		if err := roomLock.Unlock(context.Background()); err != nil {
			logger.Warn("释放房间锁失败", logger.RoomID(roomID), logger.Err(err))
		}
	}, nil
}
