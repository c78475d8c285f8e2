package worker

import (
	"context"

	"github.com/helpdeskpro/helpdesk-service/internal/events"
	"github.com/helpdeskpro/helpdesk-service/internal/service"
)

// StartNotificationWorker wires the notification handlers into the
// dispatcher and, for queue-backed dispatchers, starts the consumer
// loop in the background.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifications *service.NotificationService) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()

	if queued, ok := dispatcher.(*events.RedisDispatcher); ok {
		go queued.Run(ctx)
	}
}
