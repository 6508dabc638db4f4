package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"AreYouIn/config"
	"AreYouIn/storage/redis"
)

const (
	// 考勤机在线状态和当日上传量，都是易失数据，丢了不影响核算
	terminalSeenPrefix   = "terminal:seen"
	terminalUploadPrefix = "terminal:upload"

	uploadCounterTTL = 48 * time.Hour
)

// MarkTerminalSeen 设备任一协议请求到达时刷新在线标记
func MarkTerminalSeen(ctx context.Context, sn string) error {
	ttl := time.Duration(config.Cfg.TerminalOnlineSeconds) * time.Second
	return redis.Client().Set(ctx, redis.Key(terminalSeenPrefix, sn), time.Now().Unix(), ttl).Err()
}

// IsTerminalOnline 在线窗口内有过任一请求即算在线
func IsTerminalOnline(ctx context.Context, sn string) (bool, error) {
	err := redis.Client().Get(ctx, redis.Key(terminalSeenPrefix, sn)).Err()
	if err != nil {
		if stderrors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IncrUploadCount 累加某设备某日的上传记录数
func IncrUploadCount(ctx context.Context, sn, date string, n int) error {
	if n <= 0 {
		return nil
	}
	key := redis.Key(terminalUploadPrefix, date, sn)
	pipe := redis.Client().Pipeline()
	pipe.IncrBy(ctx, key, int64(n))
	pipe.Expire(ctx, key, uploadCounterTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// GetUploadCount 查询某设备某日的上传记录数，无记录为 0
func GetUploadCount(ctx context.Context, sn, date string) (int64, error) {
	count, err := redis.Client().Get(ctx, redis.Key(terminalUploadPrefix, date, sn)).Int64()
	if err != nil {
		if stderrors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get upload count: %w", err)
	}
	return count, nil
}
