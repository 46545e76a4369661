// Package service holds the auth, catalog and task rules on top of a storage
// provider. Every error it returns is an *apperr.Error.
package service

import (
	"context"

	"github.com/shaibs3/studyhub/internal/events"
	"go.uber.org/zap"
)

// publish delivers e; a failed delivery is logged and never fails the request.
func publish(ctx context.Context, pub events.Publisher, logger *zap.Logger, e events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, e); err != nil {
		logger.Warn("failed to publish event", zap.String("type", string(e.Type)), zap.Error(err))
	}
}
