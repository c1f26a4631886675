package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors onto AppError with a consistent status.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(err, http.StatusNotFound, StorageNotFoundMessage)
	}
	return New(err, http.StatusBadGateway, StorageErrorMessage)
}
