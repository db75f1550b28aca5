package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/blogpost/internal/events"
	"github.com/Skotchmaster/blogpost/internal/logging"
)

const publishTimeout = 5 * time.Second

// publish never fails the caller; delivery problems are only logged.
func publish(ctx context.Context, p events.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "type", event["type"], "error", err)
	}
}
