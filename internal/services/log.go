package services

import (
	"context"

	"tally/internal/log"
)

func logFor(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentServices)
}
