package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports Postgres and Redis connectivity. 503 when either store is
// down, so the process drops out of rotation; never exposes credentials or
// internals.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		postgres := "up"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			postgres = "down"
		}

		redisStatus := "up"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "down"
		}

		status := http.StatusOK
		if postgres != "up" || redisStatus != "up" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"service":  "puntoventa",
			"ok":       status == http.StatusOK,
			"postgres": postgres,
			"redis":    redisStatus,
		})
	}
}
