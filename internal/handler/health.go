package handler

import (
	"context"
	"net/http"
	"time"

	"sukiism/internal/infra"
	"sukiism/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Redis is optional and reported as "disabled" when not configured. An open
// store circuit degrades the response but does not fail it: cached reads may
// still be served.
func Health(db *gorm.DB, rdb *redis.Client, storeCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "disabled"
		if db != nil {
			dbStatus = "connected"
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(ctx) != nil {
				dbStatus = "error"
			}
		}

		redisStatus := "disabled"
		var dlq int64
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else if n, err := worker.DLQLength(ctx, rdb, worker.QueueRestock); err == nil {
				dlq = n
			}
		}

		storeStatus, storeFailures := "closed", 0
		if storeCB != nil {
			st := storeCB.Stats()
			storeStatus, storeFailures = st.State.String(), st.Failures
		}

		status := http.StatusOK
		if dbStatus == "error" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":             status == http.StatusOK,
			"db":             dbStatus,
			"redis":          redisStatus,
			"store_circuit":  storeStatus,
			"store_failures": storeFailures,
			"alerts_dlq":     dlq,
		})
	}
}

// DeadLetters lists the most recent restock alerts that exhausted their retries.
func DeadLetters(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.JSON(http.StatusOK, []worker.DLQEntry{})
			return
		}
		entries, err := worker.PeekDLQ(c.Request.Context(), rdb, worker.QueueRestock, 50)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
