// Package database 负责外部存储客户端的初始化。
package database

import (
	"clauselens-go/pkg/log"
	"context"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

// InitRedis 初始化 Redis 客户端连接。问答历史为可选能力，
// 连接失败只告警不退出，调用方会拿到 nil 客户端并自行降级。
func InitRedis(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnf("Redis 连接失败, 问答历史功能不可用: %v", err)
		return nil
	}

	log.Info("Redis client connected successfully")
	RDB = client
	return client
}
