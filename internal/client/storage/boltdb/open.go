package boltdb

import (
	"context"
	"time"
)

// defaultOpenTimeout ограничивает ожидание файловой блокировки другим процессом
const defaultOpenTimeout = 5 * time.Second

func openTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 {
			return d
		}
	}
	return defaultOpenTimeout
}
