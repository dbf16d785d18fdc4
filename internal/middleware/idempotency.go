package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:v1:"
	inProgressMarker     = "__in_progress__"
	idempotencyOpTimeout = 2 * time.Second
)

var errDuplicateInFlight = fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

// Idempotency replays the stored response for a repeated Idempotency-Key so a
// retried credit or debit is applied once. The key is reserved atomically
// before the handler runs; a concurrent request holding the same key gets 409.
// Keys are scoped to the caller and the route, and are released when the
// handler fails. Without Redis the middleware passes requests through.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		key := strings.TrimSpace(c.Get(idempotencyKeyHeader))
		if key == "" {
			return fiber.NewError(fiber.StatusBadRequest, "missing Idempotency-Key header")
		}
		cacheKey := scopedKey(c, key)
		log := logger.With("idempotency_key", key)

		ctx, cancel := context.WithTimeout(context.Background(), idempotencyOpTimeout)
		defer cancel()

		reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, ttl).Result()
		if err != nil {
			log.Error("idempotency reservation failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency store failure")
		}
		if !reserved {
			return replay(ctx, c, cache, cacheKey, log)
		}

		if err := c.Next(); err != nil {
			release(cache, cacheKey)
			return err
		}

		payload, err := json.Marshal(storedResponse{
			Status:      c.Response().StatusCode(),
			ContentType: string(c.Response().Header.ContentType()),
			Body:        string(c.Response().Body()),
		})
		if err == nil {
			persistCtx, persistCancel := context.WithTimeout(context.Background(), idempotencyOpTimeout)
			err = cache.Set(persistCtx, cacheKey, payload, ttl).Err()
			persistCancel()
		}
		if err != nil {
			// The handler already ran; keep the marker so a retry cannot apply it twice.
			log.Error("failed to persist idempotent response", "error", err)
		}
		return nil
	}
}

func replay(ctx context.Context, c *fiber.Ctx, cache *redis.Client, cacheKey string, log *slog.Logger) error {
	cached, err := cache.Get(ctx, cacheKey).Result()
	if errors.Is(err, redis.Nil) {
		// Released between SetNX and Get: the first attempt failed.
		return fiber.NewError(fiber.StatusConflict, "previous attempt failed, retry the request")
	}
	if err != nil {
		log.Error("idempotency lookup failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "idempotency store failure")
	}
	if cached == inProgressMarker {
		return errDuplicateInFlight
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(cached), &stored); err != nil {
		log.Warn("failed to decode stored idempotent response", "error", err)
		return fiber.NewError(fiber.StatusConflict, "duplicate request")
	}
	if stored.ContentType != "" {
		c.Set(fiber.HeaderContentType, stored.ContentType)
	}
	return c.Status(stored.Status).SendString(stored.Body)
}

func release(cache *redis.Client, cacheKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), idempotencyOpTimeout)
	defer cancel()
	cache.Del(ctx, cacheKey) // best effort
}

func scopedKey(c *fiber.Ctx, key string) string {
	subject := "anonymous"
	if caller, ok := CallerFrom(c); ok {
		subject = caller.ID
	}
	return idempotencyPrefix + subject + ":" + c.Method() + ":" + c.Path() + ":" + key
}
