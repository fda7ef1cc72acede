package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type HealthHandler struct {
	redis *redis.Client
}

func NewHealthHandler(redis *redis.Client) *HealthHandler {
	return &HealthHandler{redis: redis}
}

// Health always answers 200. Redis state is reported alongside.
func (h *HealthHandler) Health(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "unavailable"
		} else {
			status["redis"] = "ok"
		}
	}
	c.JSON(http.StatusOK, status)
}
